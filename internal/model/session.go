package model

import "time"

const (
	LoginMethodPassword = "password"
	LoginMethodGoogle   = "google"
)

// AdminSession is the dashboard identity carried by the signed session cookie.
type AdminSession struct {
	Subject   string // "admin" for password logins, the email for Google logins
	Method    string
	ExpiresAt time.Time
}
