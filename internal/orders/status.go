package orders

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// PENDING -> {COMPLETED, FAILED}; dua-duanya terminal, tidak ada jalan
// keluar lagi. Duplikat notifikasi jadi no-op, bukan error.
var validNext = map[Status]map[Status]bool{
	StatusPending:   {StatusCompleted: true, StatusFailed: true},
	StatusCompleted: {},
	StatusFailed:    {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}
