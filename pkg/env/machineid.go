// Package env provides process environment shared by the binaries.
package env

import (
	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
)

// AppID scopes the machine ID so the raw ID is never published.
const AppID = "dio.go"

// MachineID retrieves the ID identifying the machine, or "local" if
// the machine has none.
func MachineID() string {
	id, err := machineid.ProtectedID(AppID)
	if err != nil {
		glog.Warningf("machine ID unavailable: %v", err)
		return "local"
	}
	return id[:16]
}
