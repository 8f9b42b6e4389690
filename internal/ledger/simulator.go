package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"math/big"
	mrand "math/rand"
	"regexp"
	"time"

	"github.com/bharatcare/claims-backend/internal/apperr"
)

var addressRx = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// ValidAddress reports whether s is a 0x-prefixed 20-byte hex address.
// Wallet and contract addresses share the format.
func ValidAddress(s string) bool {
	return addressRx.MatchString(s)
}

// Simulator fabricates chain responses. Values are pseudo-random and not
// derived from any real chain state; this is a stand-in for development
// and testing, not an integration.
type Simulator struct {
	latencyScale float64
}

// NewSimulator returns a simulator with realistic latencies.
func NewSimulator() *Simulator {
	return &Simulator{latencyScale: 1}
}

// NewInstantSimulator skips the simulated latency; used by tests.
func NewInstantSimulator() *Simulator {
	return &Simulator{latencyScale: 0}
}

func (s *Simulator) sleep(ctx context.Context, base, jitter time.Duration) error {
	d := time.Duration(float64(base)*s.latencyScale + float64(jitter)*s.latencyScale*mrand.Float64())
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func randomHex(nBytes int) string {
	buf := make([]byte, nBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		for i := range buf {
			buf[i] = byte(mrand.Intn(256))
		}
	}
	return "0x" + hex.EncodeToString(buf)
}

func randInt64(min, max int64) int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(max-min+1))
	if err != nil {
		return min + mrand.Int63n(max-min+1)
	}
	return min + n.Int64()
}

func (s *Simulator) Deploy(ctx context.Context, params DeployParams) (*DeployResult, error) {
	if !ValidAddress(params.InsurerWallet) {
		return nil, apperr.Validation("invalid insurer wallet address")
	}
	if !ValidAddress(params.HospitalWallet) {
		return nil, apperr.Validation("invalid hospital wallet address")
	}
	if params.Amount <= 0 {
		return nil, apperr.Validation("amount must be greater than zero")
	}

	if err := s.sleep(ctx, 300*time.Millisecond, 500*time.Millisecond); err != nil {
		return nil, err
	}

	return &DeployResult{
		Address:     randomHex(20),
		TxHash:      randomHex(32),
		BlockNumber: randInt64(18_000_000, 19_000_000),
		GasUsed:     randInt64(100_000, 600_000),
		Timestamp:   time.Now().Unix(),
		Status:      1,
	}, nil
}

func (s *Simulator) VerifyDeployment(ctx context.Context, address, txHash string) (*VerificationResult, error) {
	if !ValidAddress(address) {
		return nil, apperr.Validation("invalid contract address")
	}
	if err := s.sleep(ctx, 200*time.Millisecond, 0); err != nil {
		return nil, err
	}
	return &VerificationResult{
		Verified:           true,
		BlockConfirmations: int(randInt64(1, 10)),
		Status:             1,
	}, nil
}

func (s *Simulator) ExecuteAction(ctx context.Context, address, action string) (*ExecutionResult, error) {
	if !ValidAddress(address) {
		return nil, apperr.Validation("invalid contract address")
	}
	if err := s.sleep(ctx, 200*time.Millisecond, 300*time.Millisecond); err != nil {
		return nil, err
	}
	return &ExecutionResult{
		TxHash:      randomHex(32),
		BlockNumber: randInt64(18_000_000, 19_000_000),
		GasUsed:     randInt64(50_000, 150_000),
		Status:      1,
	}, nil
}

func (s *Simulator) QueryState(ctx context.Context, address string) (*ContractState, error) {
	if !ValidAddress(address) {
		return nil, apperr.Validation("invalid contract address")
	}
	if err := s.sleep(ctx, 150*time.Millisecond, 0); err != nil {
		return nil, err
	}
	status := "active"
	if mrand.Intn(2) == 0 {
		status = "completed"
	}
	return &ContractState{
		Status:     status,
		Balance:    float64(randInt64(10_000, 1_010_000)),
		LastUpdate: time.Now().Unix(),
		EventLogs:  int(randInt64(1, 20)),
	}, nil
}

func (s *Simulator) AuditTrail(ctx context.Context, address string) ([]TrailEntry, error) {
	if !ValidAddress(address) {
		return nil, apperr.Validation("invalid contract address")
	}
	if err := s.sleep(ctx, 300*time.Millisecond, 0); err != nil {
		return nil, err
	}
	actions := []string{"Deploy", "Approve", "Release", "Settle"}
	n := int(randInt64(1, 5))
	trail := make([]TrailEntry, 0, n)
	for i := 0; i < n; i++ {
		trail = append(trail, TrailEntry{
			BlockNumber: 18_000_000 + int64(i)*1000,
			TxHash:      randomHex(32),
			Action:      actions[mrand.Intn(len(actions))],
			Timestamp:   time.Now().Unix() - int64(i)*3600,
			Actor:       randomHex(20),
		})
	}
	return trail, nil
}

var _ Client = (*Simulator)(nil)
