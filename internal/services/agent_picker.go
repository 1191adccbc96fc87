package services

import (
	"context"
	"sync"

	"atendezap/pkg/logger"
)

// PresenceChecker is satisfied by the redis presence store.
type PresenceChecker interface {
	IsOnline(ctx context.Context, identityID string) (bool, error)
}

// RoundRobinPicker binds new tickets to agents in rotation, preferring
// agents that currently hold a live transport. With no agent online it still
// assigns one: the ticket waits in EM_ESPERA either way and the agent sees
// it on the next login.
type RoundRobinPicker struct {
	mu       sync.Mutex
	agents   []string
	next     int
	presence PresenceChecker
	log      *logger.Logger
}

func NewRoundRobinPicker(agents []string, presence PresenceChecker, log *logger.Logger) *RoundRobinPicker {
	return &RoundRobinPicker{agents: agents, presence: presence, log: log}
}

func (p *RoundRobinPicker) PickAgent(ctx context.Context) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.agents) == 0 {
		return "", false
	}

	// One full rotation looking for an online agent.
	if p.presence != nil {
		for i := 0; i < len(p.agents); i++ {
			candidate := p.agents[(p.next+i)%len(p.agents)]
			online, err := p.presence.IsOnline(ctx, candidate)
			if err != nil {
				if p.log != nil {
					p.log.Warnf("presence lookup for %s: %s", candidate, err)
				}
				break
			}
			if online {
				p.next = (p.next + i + 1) % len(p.agents)
				return candidate, true
			}
		}
	}

	agent := p.agents[p.next]
	p.next = (p.next + 1) % len(p.agents)
	return agent, true
}
