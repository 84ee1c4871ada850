package attendance

import (
	"net/url"
	"strconv"

	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"
)

// coordPrecision is the number of decimal degrees encoded in the join URL.
// 6 decimals is ~0.1m, sufficient for sub-meter geofencing.
const coordPrecision = 6

// QRPayload is the triple a scanned QR code carries; decoding it on the
// student side reconstructs the arguments passed back into Submit.
type QRPayload struct {
	SessionID    string
	AnchorLat    float64
	AnchorLon    float64
	RadiusMeters float64
}

// JoinURL encodes the session's payload as a scannable student-facing URL,
// mirroring what the frontend expects on its /attend route.
func (s Session) JoinURL(baseURL string) string {
	q := make(url.Values)
	q.Set("session", s.ID)
	q.Set("lat", strconv.FormatFloat(s.AnchorLat, 'f', coordPrecision, 64))
	q.Set("lon", strconv.FormatFloat(s.AnchorLon, 'f', coordPrecision, 64))
	q.Set("radius", strconv.FormatFloat(s.RadiusMeters, 'f', -1, 64))
	return baseURL + "/attend?" + q.Encode()
}

// ParseJoinURL decodes a join URL back into its payload.
func ParseJoinURL(raw string) (QRPayload, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return QRPayload{}, errors.Wrap(err, "parsing join URL")
	}
	q := u.Query()

	var p QRPayload
	p.SessionID = q.Get("session")
	if p.SessionID == "" {
		return QRPayload{}, errors.New("join URL: missing session")
	}
	if p.AnchorLat, err = strconv.ParseFloat(q.Get("lat"), 64); err != nil {
		return QRPayload{}, errors.Wrap(err, "join URL: lat")
	}
	if p.AnchorLon, err = strconv.ParseFloat(q.Get("lon"), 64); err != nil {
		return QRPayload{}, errors.Wrap(err, "join URL: lon")
	}
	if p.RadiusMeters, err = strconv.ParseFloat(q.Get("radius"), 64); err != nil {
		return QRPayload{}, errors.Wrap(err, "join URL: radius")
	}
	return p, nil
}

// QRCodePNG renders the session's join URL as a PNG image of the given size.
func (s Session) QRCodePNG(baseURL string, size int) ([]byte, error) {
	png, err := qrcode.Encode(s.JoinURL(baseURL), qrcode.Medium, size)
	return png, errors.Wrap(err, "encoding QR code")
}
