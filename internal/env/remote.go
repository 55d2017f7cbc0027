package env

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Remote drives an Environment served over HTTP by NewHandler or by a
// telemetry bridge in front of the browser simulator. Requests have no
// timeout: a stalled simulator stalls the caller.
type Remote struct {
	BaseURL string
	Client  *http.Client
}

// Dial resolves id to a bridge URL and checks that it is reachable. id is a
// full http(s) URL or a bare port on localhost.
func Dial(id string) (*Remote, error) {
	base, err := resolve(id)
	if err != nil {
		return nil, err
	}
	r := &Remote{BaseURL: base, Client: &http.Client{}}
	resp, err := r.Client.Get(base + "/healthz")
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", base, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dial %s: health check returned %d", base, resp.StatusCode)
	}
	return r, nil
}

func resolve(id string) (string, error) {
	if _, err := strconv.Atoi(id); err == nil {
		return "http://localhost:" + id, nil
	}
	u, err := url.Parse(id)
	if err != nil {
		return "", fmt.Errorf("environment id %q: %w", id, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("environment id %q: want a port or http(s) URL", id)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

func (r *Remote) client() *http.Client {
	if r.Client == nil {
		return http.DefaultClient
	}
	return r.Client
}

func (r *Remote) State() ([]float64, error) {
	resp, err := r.client().Get(r.BaseURL + "/state")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	var payload stateResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("state: %w", err)
	}
	return payload.State, nil
}

func (r *Remote) Step(action int, state []float64) ([]float64, float64, bool, error) {
	var payload stepResponse
	if err := r.postJSON("/step", stepRequest{Action: action, State: state}, &payload); err != nil {
		return nil, 0, false, fmt.Errorf("step: %w", err)
	}
	return payload.State, payload.Reward, payload.Done, nil
}

func (r *Remote) Reset() error   { return r.postJSON("/reset", nil, nil) }
func (r *Remote) Restart() error { return r.postJSON("/restart", nil, nil) }
func (r *Remote) Close() error   { return r.postJSON("/close", nil, nil) }

func (r *Remote) postJSON(path string, payload, out any) error {
	var body io.Reader = http.NoBody
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	resp, err := r.client().Post(r.BaseURL+path, "application/json", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if len(msg) == 0 {
		return errors.New(resp.Status)
	}
	return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
}
