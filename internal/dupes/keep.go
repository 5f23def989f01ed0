package dupes

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/joe/dupes/internal/config"
)

// Exported variables.
var (
	ErrAborted          = errors.New("aborted by user")
	ErrChoiceOutOfRange = errors.New("chosen index out of range")
	ErrNoChooser        = errors.New("interactive keep policy needs a chooser")
	ErrNoMoreAnswers    = errors.New("scripted chooser has no more answers")
)

// Chooser asks someone which member of a group to keep.
// Returning skip leaves the group untouched. Returning ErrAborted stops the run.
type Chooser interface {
	Choose(ctx context.Context, group Group) (index int, skip bool, err error)
}

// Resolver applies a keep policy to duplicate groups.
type Resolver struct {
	policy  config.KeepPolicy
	chooser Chooser
}

// NewResolver returns a resolver for policy. chooser is required for
// config.KeepInteractive and ignored otherwise.
func NewResolver(policy config.KeepPolicy, chooser Chooser) (*Resolver, error) {
	if policy == config.KeepInteractive && chooser == nil {
		return nil, ErrNoChooser
	}

	if policy.String() == "unknown" {
		return nil, fmt.Errorf("%w: keep policy %d", config.ErrInvalidValue, policy)
	}

	return &Resolver{policy: policy, chooser: chooser}, nil
}

// Resolve picks the member to keep. ok is false when the operator skipped the group.
func (r *Resolver) Resolve(ctx context.Context, group Group) (decision KeepDecision, ok bool, err error) {
	if r.policy != config.KeepInteractive {
		return Decide(group, SelectIndex(r.policy, group.Members)), true, nil
	}

	index, skip, err := r.chooser.Choose(ctx, group)
	if err != nil {
		return KeepDecision{}, false, err //nolint:wrapcheck // chooser errors are returned as-is
	}

	if skip {
		return KeepDecision{}, false, nil
	}

	if index < 0 || index >= len(group.Members) {
		return KeepDecision{}, false, fmt.Errorf("%w: %d of %d", ErrChoiceOutOfRange, index, len(group.Members))
	}

	return Decide(group, index), true, nil
}

// Decide splits a group into the member at keep and everything else.
func Decide(group Group, keep int) KeepDecision {
	removed := make([]FileRecord, 0, len(group.Members)-1)

	for i, member := range group.Members {
		if i != keep {
			removed = append(removed, member)
		}
	}

	return KeepDecision{Kept: group.Members[keep], Removed: removed}
}

// SelectIndex returns the index chosen by a non-interactive policy.
// Ties go to the member seen first.
func SelectIndex(policy config.KeepPolicy, members []FileRecord) int {
	best := 0

	for i := 1; i < len(members); i++ {
		candidate, current := members[i], members[best]

		var better bool

		switch policy {
		case config.KeepNewest:
			better = candidate.ModTime.After(current.ModTime)
		case config.KeepOldest:
			better = candidate.ModTime.Before(current.ModTime)
		case config.KeepLargest:
			better = candidate.Size > current.Size
		case config.KeepSmallest:
			better = candidate.Size < current.Size
		case config.KeepFirst, config.KeepInteractive:
			return 0
		}

		if better {
			best = i
		}
	}

	return best
}

// ScriptedAnswer is one canned reply of a ScriptedChooser.
type ScriptedAnswer struct {
	Index int
	Skip  bool
}

// ScriptedChooser answers interactive prompts from a fixed list, in order.
type ScriptedChooser struct {
	mu      sync.Mutex
	answers []ScriptedAnswer
	asked   []Group
}

// NewScriptedChooser returns a chooser that replays answers.
func NewScriptedChooser(answers ...ScriptedAnswer) *ScriptedChooser {
	return &ScriptedChooser{answers: answers}
}

// Choose returns the next answer.
func (s *ScriptedChooser) Choose(ctx context.Context, group Group) (int, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil { //nolint:noinlineerr // cancelled before answering
		return 0, false, fmt.Errorf("choice cancelled: %w", err)
	}

	s.asked = append(s.asked, group)

	if len(s.answers) == 0 {
		return 0, false, ErrNoMoreAnswers
	}

	answer := s.answers[0]
	s.answers = s.answers[1:]

	return answer.Index, answer.Skip, nil
}

// Asked returns the groups presented so far.
func (s *ScriptedChooser) Asked() []Group {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Group(nil), s.asked...)
}
