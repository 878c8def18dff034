//go:build usbtc08

package templog

/*
#cgo linux LDFLAGS: -L/opt/picoscope/lib -lusbtc08
#cgo darwin LDFLAGS: -lusbtc08
#cgo windows LDFLAGS: -lusbtc08
#include <stdint.h>

int16_t usb_tc08_open_unit(void);
int16_t usb_tc08_close_unit(int16_t handle);
int16_t usb_tc08_set_mains(int16_t handle, int16_t sixty_hertz);
int16_t usb_tc08_set_channel(int16_t handle, int16_t channel, int8_t tc_type);
int32_t usb_tc08_get_minimum_interval_ms(int16_t handle);
int16_t usb_tc08_get_single(int16_t handle, float *temp, int16_t *overflow_flags, int16_t units);
int16_t usb_tc08_get_last_error(int16_t handle);
*/
import "C"

type cSDK struct{}

// NewSDK returns the driver binding for libusbtc08.
func NewSDK() SDK {
	return cSDK{}
}

func lastError(op string, handle int16) error {
	return &SDKError{Op: op, Status: int16(C.usb_tc08_get_last_error(C.int16_t(handle)))}
}

func (cSDK) OpenUnit() (int16, error) {
	h := int16(C.usb_tc08_open_unit())
	if h < 0 {
		// Errors raised before a unit exists are reported on handle 0.
		return 0, lastError("usb_tc08_open_unit", 0)
	}
	return h, nil
}

func (cSDK) SetMains(handle int16, mains Mains) error {
	if C.usb_tc08_set_mains(C.int16_t(handle), C.int16_t(mains)) == 0 {
		return lastError("usb_tc08_set_mains", handle)
	}
	return nil
}

func (cSDK) SetChannel(handle int16, channel int, tcType ThermocoupleType) error {
	if C.usb_tc08_set_channel(C.int16_t(handle), C.int16_t(channel), C.int8_t(tcType)) == 0 {
		return lastError("usb_tc08_set_channel", handle)
	}
	return nil
}

func (cSDK) MinimumIntervalMS(handle int16) (int32, error) {
	ms := int32(C.usb_tc08_get_minimum_interval_ms(C.int16_t(handle)))
	if ms == 0 {
		return 0, lastError("usb_tc08_get_minimum_interval_ms", handle)
	}
	return ms, nil
}

func (cSDK) GetSingle(handle int16, units Units) ([Slots]float32, uint16, error) {
	var temps [Slots]C.float
	var overflow C.int16_t
	var out [Slots]float32
	if C.usb_tc08_get_single(C.int16_t(handle), &temps[0], &overflow, C.int16_t(units)) == 0 {
		return out, 0, lastError("usb_tc08_get_single", handle)
	}
	for i, v := range temps {
		out[i] = float32(v)
	}
	return out, uint16(overflow), nil
}

func (cSDK) CloseUnit(handle int16) error {
	if C.usb_tc08_close_unit(C.int16_t(handle)) == 0 {
		return lastError("usb_tc08_close_unit", handle)
	}
	return nil
}
