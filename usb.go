package templog

import (
	"fmt"

	"github.com/google/gousb"
	log "github.com/sirupsen/logrus"
)

const (
	PicoVendorID  gousb.ID = 0x0ce9
	TC08ProductID gousb.ID = 0x1000
)

// USBDevice describes an attached datalogger as seen on the bus.
type USBDevice struct {
	Bus     int
	Address int
	Vendor  gousb.ID
	Product gousb.ID
}

func (d USBDevice) String() string {
	return fmt.Sprintf("bus %03d address %03d (%s:%s)", d.Bus, d.Address, d.Vendor, d.Product)
}

func isTC08(desc *gousb.DeviceDesc) bool {
	return desc.Vendor == PicoVendorID && desc.Product == TC08ProductID
}

// FindTC08 lists the TC-08 units attached to the host. Devices are only
// matched on their descriptors and never opened, so the vendor driver keeps
// exclusive access.
func FindTC08() ([]USBDevice, error) {
	ctx := gousb.NewContext()
	defer ctx.Close()
	ctx.Debug(0)

	var found []USBDevice
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		if isTC08(desc) {
			log.Debugf("Found device: %v", desc)
			found = append(found, USBDevice{
				Bus:     desc.Bus,
				Address: desc.Address,
				Vendor:  desc.Vendor,
				Product: desc.Product,
			})
		}
		return false
	})
	// All Devices returned from OpenDevices must be closed.
	for _, dev := range devs {
		dev.Close()
	}
	if err != nil {
		return found, fmt.Errorf("failed listing devices: %w", err)
	}
	log.Debugf("Found %d TC-08 devices", len(found))
	return found, nil
}
