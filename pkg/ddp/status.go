package ddp

import (
	"reflect"
	"strconv"

	"github.com/mitchellh/mapstructure"
)

// Status codes carried in status_code (spec.md §3).
const (
	StatusOn      = 200
	StatusStandby = 620
)

// StatusMap is the typed form of a parsed DDP response, decoded from the
// raw map[string]string via mapstructure so that the fields the core cares
// about get typed access. Keys without a field here are dropped by
// DecodeStatus.
type StatusMap struct {
	StatusCode        int    `mapstructure:"status_code"`
	Status            string `mapstructure:"status"`
	HostID            string `mapstructure:"host-id"`
	HostName          string `mapstructure:"host-name"`
	HostType          string `mapstructure:"host-type"`
	HostRequestPort   int    `mapstructure:"host-request-port"`
	SystemVersion     string `mapstructure:"system-version"`
	RunningAppTitleID string `mapstructure:"running-app-titleid"`
	RunningAppName    string `mapstructure:"running-app-name"`
	HostIP            string `mapstructure:"host-ip"`
}

// IsStandby reports whether the status represents a console in standby.
func (s StatusMap) IsStandby() bool { return s.StatusCode == StatusStandby }

// IsOn reports whether the status represents a powered-on console.
func (s StatusMap) IsOn() bool { return s.StatusCode == StatusOn }

// stringToIntHook lets mapstructure decode the numeric fields DDP carries
// as strings (status_code, host-request-port) into the struct's int
// fields.
func stringToIntHook(from, to reflect.Kind, data interface{}) (interface{}, error) {
	if from != reflect.String || to != reflect.Int {
		return data, nil
	}
	s, _ := data.(string)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

// DecodeStatus decodes a raw DDP response map (as returned by
// ParseResponse, with host-ip merged in by the caller) into a StatusMap.
func DecodeStatus(raw map[string]string) (StatusMap, error) {
	var out StatusMap
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(stringToIntHook),
		Result:     &out,
	})
	if err != nil {
		return StatusMap{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return StatusMap{}, err
	}
	return out, nil
}
