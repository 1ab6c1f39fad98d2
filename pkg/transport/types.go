// Package transport moves whole request and response frames between the
// configuring side and the DIO engine.
package transport

// PacketReader reads packets in bytes.
type PacketReader interface {
	ReadPacket() ([]byte, error)
}

// PacketWriter writes packets in bytes.
type PacketWriter interface {
	WritePacket([]byte) error
}

// PacketReadWriter reads/writes packets in bytes.
type PacketReadWriter interface {
	PacketReader
	PacketWriter
}

// Ref is a reference to a DIO device on a registry.
type Ref struct {
	// Type is the device type, "dio" by default.
	Type string
	// ID is unique ID of the device.
	ID string
}

// Name retrieves the name from ref.
func (r Ref) Name() string {
	return r.Type + "/" + r.ID
}

// IsValid indicates Ref is valid.
func (r Ref) IsValid() bool {
	return r.Type != "" && r.ID != ""
}

// Meta describes a device when registered.
type Meta struct {
	Description string            `json:"description,omitempty"`
	Version     string            `json:"version,omitempty"`
	Board       string            `json:"board,omitempty"`
	Labels      map[string]string `json:"labels,omitempty"`
}

// Info provides information of a registered device.
type Info struct {
	Ref  Ref
	Meta Meta
}
