package services

import (
	"github.com/skip2/go-qrcode"
)

// DisplayService knows where kiosk displays can reach this server
type DisplayService struct {
	url string
}

// NewDisplayService creates a new DisplayService for the given page URL
func NewDisplayService(url string) *DisplayService {
	return &DisplayService{url: url}
}

// URL returns the kiosk page address
func (s *DisplayService) URL() string {
	return s.url
}

// QRImage renders the kiosk page address as a PNG QR code, for pointing a
// tablet at the kiosk without typing
func (s *DisplayService) QRImage() ([]byte, error) {
	if s.url == "" {
		return nil, ErrEmptyURL
	}
	return qrcode.Encode(s.url, qrcode.Medium, 256)
}
