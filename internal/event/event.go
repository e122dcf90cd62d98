// Package event defines the wire shape of bus events and tolerant field access.
//
// Producers on the bus disagree about field spelling: the Java services emit
// camelCase (eventType, postId) while the others emit snake_case. Every read
// therefore tries both spellings.
package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Topic names shared by all services.
const (
	TopicContent = "content.events"
	TopicSocial  = "social.events"
	TopicUser    = "user.events"
)

// Event types carried on the topics.
const (
	TypePostCreated    = "post.created"
	TypeLikeCreated    = "like.created"
	TypeCommentCreated = "comment.created"
	TypeShareCreated   = "share.created"
	TypeFollowCreated  = "follow.created"
	TypeUserCreated    = "user.created"
)

// Envelope is a decoded bus event. Field access tolerates both snake_case and
// camelCase spellings.
type Envelope map[string]any

// Decode parses a raw message payload into an Envelope.
func Decode(payload []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	return env, nil
}

// Type returns the event discriminant, accepting event_type and eventType.
func (e Envelope) Type() string {
	return e.String("event_type")
}

// String returns the value of a field as a string. The key is given in
// snake_case; the camelCase spelling is tried as well. Missing or non-string
// values yield "".
func (e Envelope) String(snakeKey string) string {
	if v, ok := e[snakeKey].(string); ok && v != "" {
		return v
	}
	if v, ok := e[camelCase(snakeKey)].(string); ok {
		return v
	}
	return ""
}

// Data returns the nested object under "data", used by user.events payloads.
func (e Envelope) Data() map[string]any {
	if d, ok := e["data"].(map[string]any); ok {
		return d
	}
	return nil
}

// Accessors for the identifier fields the services read.

func (e Envelope) PostID() string       { return e.String("post_id") }
func (e Envelope) UserID() string       { return e.String("user_id") }
func (e Envelope) PostAuthorID() string { return e.String("post_author_id") }
func (e Envelope) CommentID() string    { return e.String("comment_id") }
func (e Envelope) FollowerID() string   { return e.String("follower_id") }
func (e Envelope) FollowingID() string  { return e.String("following_id") }
func (e Envelope) Content() string      { return e.String("content") }

// camelCase converts a snake_case key to its camelCase spelling.
func camelCase(key string) string {
	parts := strings.Split(key, "_")
	if len(parts) == 1 {
		return key
	}
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		if p == "id" {
			b.WriteString("Id")
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
