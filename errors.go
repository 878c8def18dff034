package templog

import (
	"errors"
	"fmt"
)

var (
	// ErrNoResponse is returned when the infrared sensor stays silent for
	// every attempt of a read.
	ErrNoResponse = errors.New("no response from infrared sensor")
	// ErrShortResponse is returned when a response is too short to hold a
	// temperature.
	ErrShortResponse = errors.New("infrared response too short")
	// ErrNoDevice is returned when the SDK finds no datalogger to open.
	ErrNoDevice = errors.New("no TC-08 unit found")
	// ErrOverflow is returned when the datalogger flags the requested
	// channel as out of range.
	ErrOverflow = errors.New("thermocouple reading overflowed")
	// ErrSDKUnavailable is returned by the SDK stub of builds made without
	// the usbtc08 tag.
	ErrSDKUnavailable = errors.New("binary built without usbtc08 SDK support")
)

// SDK status codes reported by usb_tc08_get_last_error.
const (
	StatusOK                    int16 = 0
	StatusOSNotSupported        int16 = 1
	StatusNoChannelsSet         int16 = 2
	StatusInvalidParameter      int16 = 3
	StatusVariantNotSupported   int16 = 4
	StatusIncorrectMode         int16 = 5
	StatusEnumerationIncomplete int16 = 6
	StatusNotResponding         int16 = 7
	StatusFirmwareFail          int16 = 8
	StatusConfigFail            int16 = 9
	StatusNotFound              int16 = 10
	StatusThreadFail            int16 = 11
	StatusPipeInfoFail          int16 = 12
	StatusNotCalibrated         int16 = 13
	StatusPicoppTooOld          int16 = 14
	StatusCommunication         int16 = 15
)

var statusText = map[int16]string{
	StatusOK:                    "ok",
	StatusOSNotSupported:        "OS not supported",
	StatusNoChannelsSet:         "no channels set",
	StatusInvalidParameter:      "invalid parameter",
	StatusVariantNotSupported:   "variant not supported",
	StatusIncorrectMode:         "incorrect mode",
	StatusEnumerationIncomplete: "enumeration incomplete",
	StatusNotResponding:         "not responding",
	StatusFirmwareFail:          "firmware failure",
	StatusConfigFail:            "config failure",
	StatusNotFound:              "not found",
	StatusThreadFail:            "thread failure",
	StatusPipeInfoFail:          "pipe info failure",
	StatusNotCalibrated:         "not calibrated",
	StatusPicoppTooOld:          "picopp driver too old",
	StatusCommunication:         "communication error",
}

// SDKError reports a failed call into the TC-08 driver.
type SDKError struct {
	Op     string
	Status int16
}

func (e *SDKError) Error() string {
	text, ok := statusText[e.Status]
	if !ok {
		text = "unknown status"
	}
	return fmt.Sprintf("%s failed: %s (status %d)", e.Op, text, e.Status)
}
