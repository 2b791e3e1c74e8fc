package models

import "time"

// Capability names one independently granted permission flag.
type Capability string

const (
	CapabilityCreate   Capability = "create"
	CapabilityRead     Capability = "read"
	CapabilityUpdate   Capability = "update"
	CapabilityDelete   Capability = "delete"
	CapabilityDownload Capability = "download"
)

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityCreate, CapabilityRead, CapabilityUpdate, CapabilityDelete, CapabilityDownload:
		return true
	}
	return false
}

// Capabilities is the flag set stored on a permission row.
type Capabilities struct {
	Create   bool `db:"can_create" json:"create"`
	Read     bool `db:"can_read" json:"read"`
	Update   bool `db:"can_update" json:"update"`
	Delete   bool `db:"can_delete" json:"delete"`
	Download bool `db:"can_download" json:"download"`
}

// AllCapabilities grants every flag.
func AllCapabilities() Capabilities {
	return Capabilities{Create: true, Read: true, Update: true, Delete: true, Download: true}
}

// Has returns the flag named by c; unknown capabilities are never granted.
func (c Capabilities) Has(capability Capability) bool {
	switch capability {
	case CapabilityCreate:
		return c.Create
	case CapabilityRead:
		return c.Read
	case CapabilityUpdate:
		return c.Update
	case CapabilityDelete:
		return c.Delete
	case CapabilityDownload:
		return c.Download
	}
	return false
}

// Permission associates a role and a menu path with a capability set.
type Permission struct {
	ID       int64  `db:"id" json:"id"`
	Role     Role   `db:"role" json:"role"`
	MenuPath string `db:"menu_path" json:"menu_path"`
	Capabilities
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Menu is a navigable resource in the client.
type Menu struct {
	ID        int64     `db:"id" json:"id"`
	Path      string    `db:"path" json:"path"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
