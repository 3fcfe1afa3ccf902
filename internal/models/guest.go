package models

import (
	"time"

	"gorm.io/gorm"
)

// Guest device classes
const (
	DeviceMobile     = "mobile"
	DeviceOrdinateur = "ordinateur"
	DeviceTablette   = "tablette"
)

// Guest browser classes
const (
	BrowserChrome  = "chrome"
	BrowserEdge    = "edge"
	BrowserFirefox = "firefox"
	BrowserSafari  = "safari"
	BrowserAutre   = "autre"
)

// Guest is an anonymous reviewer profile scoped to one project. It carries
// no credential: possession of a valid session token is the only claim to it.
type Guest struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	Prenom     string         `gorm:"size:100;not null" json:"prenom"`
	Nom        string         `gorm:"size:100;not null" json:"nom"`
	Poste      string         `gorm:"size:200" json:"poste"`
	Device     string         `gorm:"size:20" json:"device"`     // mobile, ordinateur, tablette
	Navigateur string         `gorm:"size:20" json:"navigateur"` // chrome, edge, firefox, safari, autre
	ProjectID  uint           `gorm:"index;not null" json:"project_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Guest) TableName() string { return "guests" }

// ValidDevice reports whether d is a known device class.
func ValidDevice(d string) bool {
	switch d {
	case DeviceMobile, DeviceOrdinateur, DeviceTablette:
		return true
	}
	return false
}

// ValidBrowser reports whether b is a known browser class.
func ValidBrowser(b string) bool {
	switch b {
	case BrowserChrome, BrowserEdge, BrowserFirefox, BrowserSafari, BrowserAutre:
		return true
	}
	return false
}
