package orchestrator_test

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arnavsurve/wfcapture/pkg/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLProber_Accessible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := orchestrator.NewURLProber(2*time.Second, nil)
	assert.NoError(t, p.Probe(context.Background(), srv.URL))
}

// TestURLProber_HeadRejectedFallsBackToGet covers servers that reject HEAD
// outright but serve GET fine.
func TestURLProber_HeadRejectedFallsBackToGet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			conn, _, err := w.(http.Hijacker).Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := orchestrator.NewURLProber(2*time.Second, nil)
	assert.NoError(t, p.Probe(context.Background(), srv.URL))
}

func TestURLProber_RedirectAccepted(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL, http.StatusFound)
	}))
	defer srv.Close()

	p := orchestrator.NewURLProber(2*time.Second, nil)
	assert.NoError(t, p.Probe(context.Background(), srv.URL))
}

func TestURLProber_BadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := orchestrator.NewURLProber(2*time.Second, nil)
	err := p.Probe(context.Background(), srv.URL)

	var perr *orchestrator.ProbeError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, orchestrator.ReasonBadStatus, perr.Reason)
	assert.Contains(t, perr.Error(), "404")
}

func TestURLProber_ConnectionRefused(t *testing.T) {
	// Grab a port the OS considers free, then close the listener so
	// nothing is accepting on it.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	p := orchestrator.NewURLProber(2*time.Second, nil)
	err = p.Probe(context.Background(), "http://"+addr)

	var perr *orchestrator.ProbeError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, orchestrator.ReasonConnectionRefused, perr.Reason)
}

func TestURLProber_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	p := orchestrator.NewURLProber(50*time.Millisecond, nil)
	err := p.Probe(context.Background(), srv.URL)

	var perr *orchestrator.ProbeError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, orchestrator.ReasonTimeout, perr.Reason)
}
