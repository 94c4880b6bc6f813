package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"gopkg.in/urfave/cli.v1"

	"renterverify/internal/registry/models"
)

type client struct {
	base  string
	token string
	http  *http.Client
}

func newClient(c *cli.Context) *client {
	return &client{
		base:  strings.TrimRight(c.GlobalString("url"), "/"),
		token: c.GlobalString("token"),
		http:  &http.Client{Timeout: 10 * time.Second},
	}
}

// do sends a request and returns the raw body. Registry failures come back
// as errors carrying the literal result code.
func (cl *client) do(method, path string, body any, auth bool) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, cl.base+path, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		if cl.token == "" {
			return nil, fmt.Errorf("--token (or REGISTRY_TOKEN) is required")
		}
		req.Header.Set("Authorization", "Bearer "+cl.token)
	}

	resp, err := cl.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		var failure models.FailureResponse
		if json.Unmarshal(raw, &failure) == nil && failure.Err != 0 {
			return nil, fmt.Errorf("registry refused (code %d): %s", failure.Err, failure.Error)
		}
		return nil, fmt.Errorf("registry returned %s: %s", resp.Status, strings.TrimSpace(string(raw)))
	}
	return raw, nil
}

func renterPath(c *cli.Context, suffix string) (string, error) {
	renter := c.Args().First()
	if renter == "" {
		return "", fmt.Errorf("renter argument is required")
	}
	return "/registry/verifications/" + url.PathEscape(renter) + suffix, nil
}

func mutate(c *cli.Context, method, path string, body any) error {
	if _, err := newClient(c).do(method, path, body, true); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "ok")
	return nil
}

func requestVerification(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: request <business name> <business id>")
	}
	return mutate(c, http.MethodPost, "/registry/verifications", models.VerificationRequest{
		BusinessName: c.Args().Get(0),
		BusinessID:   c.Args().Get(1),
	})
}

func approve(c *cli.Context) error {
	path, err := renterPath(c, "/approve")
	if err != nil {
		return err
	}
	return mutate(c, http.MethodPost, path, nil)
}

func revoke(c *cli.Context) error {
	path, err := renterPath(c, "/revoke")
	if err != nil {
		return err
	}
	return mutate(c, http.MethodPost, path, nil)
}

func setAdmin(c *cli.Context) error {
	newAdmin := c.Args().First()
	if newAdmin == "" {
		return fmt.Errorf("new admin argument is required")
	}
	return mutate(c, http.MethodPut, "/registry/admin", models.SetAdminRequest{NewAdmin: newAdmin})
}

func status(c *cli.Context) error {
	path, err := renterPath(c, "/status")
	if err != nil {
		return err
	}
	raw, err := newClient(c).do(http.MethodGet, path, nil, false)
	if err != nil {
		return err
	}
	var resp models.StatusResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s verified=%t\n", resp.Renter, resp.IsVerified)
	return nil
}

func show(c *cli.Context) error {
	path, err := renterPath(c, "")
	if err != nil {
		return err
	}
	raw, err := newClient(c).do(http.MethodGet, path, nil, false)
	if err != nil {
		return err
	}
	var resp models.DetailsResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return err
	}
	if resp.Record == nil {
		fmt.Fprintf(c.App.Writer, "%s has no verification record\n", resp.Renter)
		return nil
	}
	r := resp.Record
	fmt.Fprintf(c.App.Writer, "renter:            %s\n", resp.Renter)
	fmt.Fprintf(c.App.Writer, "business name:     %s\n", r.BusinessName)
	fmt.Fprintf(c.App.Writer, "business id:       %s\n", r.BusinessID)
	fmt.Fprintf(c.App.Writer, "verified:          %t\n", r.IsVerified)
	fmt.Fprintf(c.App.Writer, "verification date: %d\n", r.VerificationDate)
	fmt.Fprintf(c.App.Writer, "last updated:      %d\n", r.LastUpdated)
	return nil
}

func showAdmin(c *cli.Context) error {
	raw, err := newClient(c).do(http.MethodGet, "/registry/admin", nil, false)
	if err != nil {
		return err
	}
	var resp models.AdminResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, resp.Admin)
	return nil
}
