package actor

import "fmt"

// Pid uniquely identifies a live or once-live actor within an ActorSystem.
// Value is monotonically allocated by SystemState; Generation is reserved
// for future pid-reuse schemes and is always 0 today. Equality is
// structural, so a Pid is safe to use as a map key; path rides along in
// that comparison too, but since SystemState assigns it exactly once,
// together with a freshly allocated Value, at spawn time, two Pids never
// agree on Value while disagreeing on path.
type Pid struct {
	Value      uint64
	Generation uint32
	path       string
}

// NewPid constructs a Pid bound to a local mailbox path.
func NewPid(value uint64, path string) Pid {
	return Pid{Value: value, path: path}
}

// Path returns the human-readable local path assigned at spawn time, e.g.
// "/user/parent/child".
func (p Pid) Path() string {
	return p.path
}

// String renders the local canonical form of the pid: "/user/parent/child".
func (p Pid) String() string {
	if p.path == "" {
		return fmt.Sprintf("$%d", p.Value)
	}
	return p.path
}

// CanonicalAddress renders the remote canonical form used by remoting
// transports: "fraktor.tcp://system@host:port/user/parent/child". The core
// never dials this address itself; it only formats it so a remoting package
// can choose between this and the local form returned by String().
func (p Pid) CanonicalAddress(systemName, host string, port uint16) string {
	return fmt.Sprintf("fraktor.tcp://%s@%s:%d%s", systemName, host, port, p.path)
}

// IsZero reports whether this Pid is the zero value (never assigned).
func (p Pid) IsZero() bool {
	return p.Value == 0 && p.path == ""
}

// pidSlice preserves insertion order for a cell's children (AllForOne
// snapshots, Stop's child cascade); duplicates are rejected by the caller
// (ActorCell.addChild) before insertion so this stays a plain ordered list
// rather than a set type.
type pidSlice []Pid

func (s pidSlice) indexOf(target Pid) int {
	for i, p := range s {
		if p == target {
			return i
		}
	}
	return -1
}

func (s pidSlice) contains(target Pid) bool {
	return s.indexOf(target) >= 0
}

func (s pidSlice) remove(target Pid) pidSlice {
	idx := s.indexOf(target)
	if idx < 0 {
		return s
	}
	out := make(pidSlice, 0, len(s)-1)
	out = append(out, s[:idx]...)
	out = append(out, s[idx+1:]...)
	return out
}

// snapshot returns a defensive copy, used whenever the slice escapes the
// cell's lock (e.g. AllForOne's affected-set snapshot, Stop's child cascade).
func (s pidSlice) snapshot() []Pid {
	out := make([]Pid, len(s))
	copy(out, s)
	return out
}
