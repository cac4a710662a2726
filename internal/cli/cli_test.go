package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/prorate/internal/infrastructure/config"
)

type allocatedBill struct {
	Discount string `json:"price_bill_discount"`
	Lists    []struct {
		ID     *string `json:"seq_number"`
		Name   string  `json:"name"`
		Ratio  string  `json:"proportion_discount_ratio"`
		Amount string  `json:"proportion_discount_price"`
	} `json:"lists"`
}

func runAllocate(t *testing.T, stdin string, args ...string) (int, allocatedBill, string) {
	t.Helper()
	// keep the run independent of any config.yaml in the package directory
	args = append([]string{"-config", filepath.Join(t.TempDir(), "none.yaml")}, args...)

	var stdout, stderr bytes.Buffer
	code := RunAllocate(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)

	var bill allocatedBill
	if code == ExitOK {
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &bill), stdout.String())
	}
	return code, bill, stderr.String()
}

func TestParseAllocateFlags(t *testing.T) {
	flags, err := ParseAllocateFlags([]string{"-input", "bill.json", "-precision", "1", "-verbose"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "config.yaml", flags.ConfigPath)
	assert.Equal(t, "bill.json", flags.Input)
	assert.True(t, flags.Verbose)
	require.NotNil(t, flags.PrecisionOverride())
	assert.Equal(t, 1, *flags.PrecisionOverride())
}

func TestParseAllocateFlags_Defaults(t *testing.T) {
	flags, err := ParseAllocateFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Empty(t, flags.Input)
	assert.Nil(t, flags.PrecisionOverride())
}

func TestAllocateFlags_PrecisionOverride(t *testing.T) {
	assert.Nil(t, AllocateFlags{Precision: -1}.PrecisionOverride())

	p := AllocateFlags{Precision: -3}.PrecisionOverride()
	require.NotNil(t, p)
	assert.Equal(t, -3, *p)
}

func TestParseAllocateFlags_RejectsPositionalArgs(t *testing.T) {
	_, err := ParseAllocateFlags([]string{"bill.json"}, io.Discard)
	assert.Error(t, err)
}

func TestRunAllocate_Sample(t *testing.T) {
	code, bill, stderr := runAllocate(t, "")

	require.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "0.21", bill.Discount)
	require.Len(t, bill.Lists, 3)
	assert.Equal(t, "Rice cooker", bill.Lists[0].Name)
	assert.Equal(t, "0.47", bill.Lists[1].Ratio)
	assert.Equal(t, "0.01", bill.Lists[2].Amount)
	assert.Contains(t, stderr, "Summary: Discount=0.21 Items=3 Precision=2")
}

func TestRunAllocate_Stdin(t *testing.T) {
	code, bill, stderr := runAllocate(t,
		`{"price_bill_discount": 100, "lists": [{"price_grand_total": 1}, {"price_grand_total": 1}, {"price_grand_total": 1}]}`,
		"-input", "-")

	require.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "100.00", bill.Discount)
	require.Len(t, bill.Lists, 3)
	assert.Equal(t, "34.00", bill.Lists[0].Amount)
	assert.Equal(t, "33.00", bill.Lists[1].Amount)
	assert.Nil(t, bill.Lists[0].ID)
}

func TestRunAllocate_PrecisionFlag(t *testing.T) {
	code, bill, stderr := runAllocate(t, "", "-precision", "1")

	require.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "0.2", bill.Discount)
	assert.Contains(t, stderr, "Precision=1")
}

func TestRunAllocate_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bill.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"price_bill_discount": "1", "lists": [{"seq_number": "a", "price_grand_total": "3"}]}`), 0644))

	code, bill, stderr := runAllocate(t, "", "-input", path, "-verbose")

	require.Equal(t, ExitOK, code, stderr)
	assert.Equal(t, "1.00", bill.Lists[0].Ratio)
	assert.Equal(t, "1.00", bill.Lists[0].Amount)
	assert.Contains(t, stderr, "id=a")
}

func TestRunAllocate_ExitCodes(t *testing.T) {
	tests := []struct {
		name  string
		stdin string
		args  []string
		want  int
	}{
		{"unknown flag", "", []string{"-nope"}, ExitUsage},
		{"precision out of range", "", []string{"-precision", "3"}, ExitUsage},
		{"negative precision other than -1", "", []string{"-precision", "-3"}, ExitUsage},
		{"missing input file", "", []string{"-input", "/does/not/exist.json"}, ExitUsage},
		{"malformed json", "{", []string{"-input", "-"}, ExitUsage},
		{"negative discount", `{"price_bill_discount": "-1", "lists": []}`, []string{"-input", "-"}, ExitAllocation},
		{"no allocatable items", `{"price_bill_discount": "1", "lists": [{"price_grand_total": "x"}]}`, []string{"-input", "-"}, ExitAllocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runAllocate(t, tt.stdin, tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRunAllocate_BrokenConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("allocator:\n  precision: 7\n"), 0644))

	var stderr bytes.Buffer
	code := RunAllocate(context.Background(), []string{"-config", path}, strings.NewReader(""), io.Discard, &stderr)

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, stderr.String(), "config")
}

func TestReadBill_Sample(t *testing.T) {
	bill, err := ReadBill("", nil)
	require.NoError(t, err)
	assert.Equal(t, "0.21", bill.DiscountTotal)
	assert.Len(t, bill.Items, 3)
}

func TestParseServeFlags(t *testing.T) {
	flags, err := ParseServeFlags([]string{"-port", "9000"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, 9000, flags.Port)
	assert.Equal(t, "config.yaml", flags.ConfigPath)
}

func TestNewServer_FromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Observability.Logging.Format = "json"

	server, logger, err := NewServer(cfg, ServeFlags{Port: 9001})
	require.NoError(t, err)
	assert.NotNil(t, server)
	assert.NotNil(t, logger)
}

type fakeListener struct {
	mu       sync.Mutex
	started  chan struct{}
	stop     chan struct{}
	startErr error
	shutdown bool
}

func newFakeListener() *fakeListener {
	return &fakeListener{started: make(chan struct{}), stop: make(chan struct{})}
}

func (f *fakeListener) Start() error {
	close(f.started)
	if f.startErr != nil {
		return f.startErr
	}
	<-f.stop
	return nil
}

func (f *fakeListener) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown = true
	close(f.stop)
	return nil
}

func TestRunServe_ShutsDownOnCancel(t *testing.T) {
	cfg := config.Default()
	cfg.Server.ShutdownTimeout = time.Second
	listener := newFakeListener()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- RunServe(ctx, cfg, listener, logger) }()

	<-listener.started
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("RunServe did not return after cancel")
	}
	listener.mu.Lock()
	defer listener.mu.Unlock()
	assert.True(t, listener.shutdown)
}

func TestRunServe_ReturnsStartError(t *testing.T) {
	listener := newFakeListener()
	listener.startErr = errors.New("address in use")

	err := RunServe(context.Background(), config.Default(), listener, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.EqualError(t, err, "address in use")
}
