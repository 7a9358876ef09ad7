package transaction

import (
	"math/rand/v2"
	"net/http"
	"sync"
)

// Status is the outcome assigned to a transaction after validation
type Status string

const (
	StatusPending Status = "PENDING"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Outcome is the code/message pair reported to the caller for a status
type Outcome struct {
	Code    int
	Message string
}

// Response codes. 100 mirrors the informational "still in progress" class.
const (
	CodePending = 100
	CodeSuccess = http.StatusOK
	CodeFailure = http.StatusBadRequest
)

// OutcomeFor maps a status to its response pair. Unrecognized statuses map to
// (400, "Unknown error").
func OutcomeFor(status Status) Outcome {
	switch status {
	case StatusPending:
		return Outcome{Code: CodePending, Message: "Transaction Pending"}
	case StatusSuccess:
		return Outcome{Code: CodeSuccess, Message: "Transaction successfully processed"}
	case StatusFailure:
		return Outcome{Code: CodeFailure, Message: "Transaction failed"}
	default:
		return Outcome{Code: CodeFailure, Message: "Unknown error"}
	}
}

// Assignor decides the status of a newly validated transaction.
// Implementations must be safe for concurrent use.
type Assignor interface {
	Assign(txn *Transaction) Status
}

// IntSource returns a uniform integer in [0, n)
type IntSource interface {
	IntN(n int) int
}

// WeightedAssignor simulates a settlement decision: 10% PENDING, 85% SUCCESS,
// 5% FAILURE, drawn from a uniform roll in [1, 100].
type WeightedAssignor struct {
	src IntSource
}

// NewWeightedAssignor creates an assignor drawing from src. A nil src uses the
// process-wide random generator.
func NewWeightedAssignor(src IntSource) *WeightedAssignor {
	if src == nil {
		src = globalSource{}
	}
	return &WeightedAssignor{src: src}
}

// Assign draws a status for txn. The transaction itself does not influence the draw.
func (a *WeightedAssignor) Assign(_ *Transaction) Status {
	return StatusForRoll(a.src.IntN(100) + 1)
}

// StatusForRoll maps a roll in [1, 100] to a status
func StatusForRoll(roll int) Status {
	switch {
	case roll <= 10:
		return StatusPending
	case roll <= 95:
		return StatusSuccess
	default:
		return StatusFailure
	}
}

// globalSource uses the top-level math/rand/v2 functions, which are safe for concurrent use
type globalSource struct{}

func (globalSource) IntN(n int) int {
	return rand.IntN(n)
}

// SeededSource is a deterministic IntSource guarded by a mutex so that a single
// instance can serve concurrent requests
type SeededSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededSource creates a reproducible source from seed
func NewSeededSource(seed uint64) *SeededSource {
	return &SeededSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (s *SeededSource) IntN(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.IntN(n)
}
