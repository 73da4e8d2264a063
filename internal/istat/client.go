// Package istat talks to the ISTAT "Rivaluta" calculator, which publishes
// the official revaluation coefficients for historical amounts.
package istat

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"rivaluta/internal/core"
	"rivaluta/internal/log"
)

// DefaultEndpoint is the calculator form action on rivaluta.istat.it.
const DefaultEndpoint = "https://rivaluta.istat.it/Rivaluta/CalcolatoreCoefficientiAction.action"

// maxBodySize bounds how much of a response page is read. A larger page is
// rejected rather than parsed truncated.
const maxBodySize = 4 << 20

// Config holds everything the client needs; nothing is read from globals.
type Config struct {
	Endpoint string
	// Reference is the "current" period every amount is revalued to.
	Reference  core.Period
	HTTPClient *http.Client
}

type Client struct {
	endpoint  string
	reference core.Period
	http      *http.Client
}

func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		endpoint:  endpoint,
		reference: cfg.Reference,
		http:      httpClient,
	}
}

// Reference returns the configured target period.
func (c *Client) Reference() core.Period { return c.reference }

// Revalue performs one form submission for period and amount. Errors wrap
// core.ErrNetwork or core.ErrParse.
func (c *Client) Revalue(ctx context.Context, period core.Period, amount core.Amount) (core.Result, error) {
	form := buildForm(period, c.reference, amount)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return core.Result{}, fmt.Errorf("%w: build request: %w", core.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return core.Result{}, fmt.Errorf("%w: post %s: %w", core.ErrNetwork, period, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return core.Result{}, fmt.Errorf("%w: unexpected status %d for %s", core.ErrNetwork, resp.StatusCode, period)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return core.Result{}, fmt.Errorf("%w: read response for %s: %w", core.ErrNetwork, period, err)
	}
	if len(body) > maxBodySize {
		return core.Result{}, fmt.Errorf("%w: response for %s too large, over %d bytes", core.ErrNetwork, period, maxBodySize)
	}

	result, err := ParseResult(bytes.NewReader(body))
	if err != nil {
		return core.Result{}, fmt.Errorf("parse response for %s: %w", period, err)
	}

	fields := log.NewFields().
		WithComponent(log.ComponentISTAT).
		WithOperation(log.OpRevalue).
		WithPeriod(period)
	fields[log.FieldCoefficient] = result.Coefficient
	fields[log.FieldRevaluedAmount] = result.RevaluedAmount
	slog.DebugContext(ctx, "Revaluation received", fields.ToSlice()...)

	return result, nil
}

// buildForm mirrors the fields the calculator's HTML form submits.
func buildForm(period, reference core.Period, amount core.Amount) url.Values {
	form := url.Values{}
	form.Set("SELEZIONE", "HOME")
	form.Set("CARTELLA", "")
	form.Set("PERIODO", "1")
	form.Set("meseDa", period.MonthName())
	form.Set("annoDa", strconv.Itoa(period.Year()))
	form.Set("meseA", reference.MonthName())
	form.Set("annoA", strconv.Itoa(reference.Year()))
	form.Set("SOMMA", amount.String())
	form.Set("EUROLIRE", "true")
	return form
}
