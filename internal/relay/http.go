package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cipherpost/internal/domain"
)

// HTTP is a JSON-over-HTTP relay client.
type HTTP struct {
	base string
	http *http.Client
}

// NewHTTP returns a relay client for the given base URL. A nil client falls
// back to http.DefaultClient.
func NewHTTP(base string, client *http.Client) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{base: base, http: client}
}

// PublishDeviceBundle uploads this device's bundle.
func (c *HTTP) PublishDeviceBundle(ctx context.Context, bundle domain.DeviceBundle) error {
	return c.post(ctx, "/bundle", bundle, nil)
}

// FetchDeviceList returns the device IDs an address has published bundles for.
func (c *HTTP) FetchDeviceList(
	ctx context.Context,
	address domain.Address,
) ([]domain.DeviceID, error) {
	var out []domain.DeviceID
	if err := c.get(ctx, "/devices/"+url.PathEscape(address.String()), &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchDeviceBundle returns the published bundle for one device of an address.
func (c *HTTP) FetchDeviceBundle(
	ctx context.Context,
	address domain.Address,
	device domain.DeviceID,
) (domain.DeviceBundle, error) {
	path := fmt.Sprintf("/bundle/%s/%d", url.PathEscape(address.String()), device)
	var out domain.DeviceBundle
	if err := c.get(ctx, path, &out, domain.ErrBundleNotFound); err != nil {
		return domain.DeviceBundle{}, err
	}
	return out, nil
}

// SendEnvelope posts an envelope for the recipient address.
func (c *HTTP) SendEnvelope(ctx context.Context, envelope domain.Envelope) error {
	return c.post(ctx, "/msg/"+url.PathEscape(envelope.To.String()), envelope, nil)
}

// FetchEnvelopes returns up to limit queued envelopes for address.
func (c *HTTP) FetchEnvelopes(
	ctx context.Context,
	address domain.Address,
	limit int,
) ([]domain.Envelope, error) {
	path := "/msg/" + url.PathEscape(address.String())
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out []domain.Envelope
	if err := c.get(ctx, path, &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// AckEnvelopes drops the first count queued envelopes for address.
func (c *HTTP) AckEnvelopes(ctx context.Context, address domain.Address, count int) error {
	return c.post(ctx, "/msg/"+url.PathEscape(address.String())+"/ack", struct {
		Count int `json:"count"`
	}{Count: count}, nil)
}

// AnnouncePresence marks address as online.
func (c *HTTP) AnnouncePresence(ctx context.Context, address domain.Address) error {
	return c.post(ctx, "/presence/"+url.PathEscape(address.String()), struct{}{}, nil)
}

// FetchRoster returns the addresses known to the relay.
func (c *HTTP) FetchRoster(
	ctx context.Context,
	address domain.Address,
) ([]domain.Address, error) {
	var out []domain.Address
	if err := c.get(ctx, "/roster/"+url.PathEscape(address.String()), &out, nil); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTP) post(ctx context.Context, path string, in, out any) error {
	buf := new(bytes.Buffer)
	if err := json.NewEncoder(buf).Encode(in); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay post %s: %s", path, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// get fetches path into out. A 404 maps to notFound when the caller supplies
// a sentinel for it; other endpoints report the plain status.
func (c *HTTP) get(ctx context.Context, path string, out any, notFound error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound && notFound != nil {
		return fmt.Errorf("relay get %s: %w", path, notFound)
	}
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("relay get %s: %s", path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Compile-time assertion that HTTP implements domain.RelayClient.
var _ domain.RelayClient = (*HTTP)(nil)
