package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/zenithhr/expensio/internal/banking/domain"
)

const (
	simulatedSuccessRate = 0.95
	simulatedMaxDelay    = 500 * time.Millisecond

	errCodeGatewayDeclined = "BANK_GATEWAY_DECLINED"
)

// SimulatedProcessor stands in for a real bank gateway: a bounded delay and
// a ~95% success rate. Rand and sleep are injectable so tests can force
// either outcome without waiting.
type SimulatedProcessor struct {
	rand  *rand.Rand
	sleep func(time.Duration)
}

func NewSimulatedProcessor() *SimulatedProcessor {
	return &SimulatedProcessor{
		rand:  rand.New(rand.NewSource(time.Now().UnixNano())),
		sleep: time.Sleep,
	}
}

// NewSimulatedProcessorWith builds a processor with a fixed seed and sleep
// function. Used by tests.
func NewSimulatedProcessorWith(r *rand.Rand, sleep func(time.Duration)) *SimulatedProcessor {
	return &SimulatedProcessor{rand: r, sleep: sleep}
}

func (p *SimulatedProcessor) Process(ctx context.Context, provider domain.Provider, mode domain.PaymentMode, batchRef string, payments []domain.EmployeePayment) (*domain.PaymentResponse, error) {
	delay := time.Duration(p.rand.Int63n(int64(simulatedMaxDelay)))
	p.sleep(delay)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if p.rand.Float64() >= simulatedSuccessRate {
		return &domain.PaymentResponse{
			Success:   false,
			ErrorCode: errCodeGatewayDeclined,
		}, nil
	}

	return &domain.PaymentResponse{
		Success:     true,
		ReferenceID: fmt.Sprintf("UTR%012d", p.rand.Int63n(1_000_000_000_000)),
	}, nil
}

var _ domain.PaymentProcessor = (*SimulatedProcessor)(nil)
