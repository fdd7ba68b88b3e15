/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package guessing

import "golang.org/x/time/rate"

// Session is one connected client. A player's id is its session id, so a
// reconnecting client is a new player.
type Session interface {
	ID() string
	// Deliver queues msg for the client and reports whether it was accepted.
	Deliver(msg ServerMessage) bool
	Close()
}

type member struct {
	session Session
	room    string
	limiter *rate.Limiter
}

// sessions maps connection ids to their session and current room.
type sessions struct {
	members map[string]*member
	limit   rate.Limit
	burst   int
}

func newSessions(limit rate.Limit, burst int) *sessions {
	return &sessions{
		members: make(map[string]*member),
		limit:   limit,
		burst:   burst,
	}
}

func (s *sessions) add(sess Session) *member {
	m := &member{
		session: sess,
		limiter: rate.NewLimiter(s.limit, s.burst),
	}
	s.members[sess.ID()] = m
	return m
}

func (s *sessions) get(id string) *member {
	return s.members[id]
}

func (s *sessions) remove(id string) {
	delete(s.members, id)
}

func (s *sessions) inRoom(code string) []*member {
	var out []*member
	for _, m := range s.members {
		if m.room == code {
			out = append(out, m)
		}
	}
	return out
}

func (s *sessions) closeAll() {
	for id, m := range s.members {
		m.session.Close()
		delete(s.members, id)
	}
}
