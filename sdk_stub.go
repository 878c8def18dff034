//go:build !usbtc08

package templog

type unavailableSDK struct{}

// NewSDK returns a driver whose every call fails with ErrSDKUnavailable.
// Build with -tags usbtc08 to link against libusbtc08.
func NewSDK() SDK {
	return unavailableSDK{}
}

func (unavailableSDK) OpenUnit() (int16, error) { return 0, ErrSDKUnavailable }

func (unavailableSDK) SetMains(int16, Mains) error { return ErrSDKUnavailable }

func (unavailableSDK) SetChannel(int16, int, ThermocoupleType) error { return ErrSDKUnavailable }

func (unavailableSDK) MinimumIntervalMS(int16) (int32, error) { return 0, ErrSDKUnavailable }

func (unavailableSDK) GetSingle(int16, Units) ([Slots]float32, uint16, error) {
	return [Slots]float32{}, 0, ErrSDKUnavailable
}

func (unavailableSDK) CloseUnit(int16) error { return ErrSDKUnavailable }
