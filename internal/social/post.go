package social

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"socialnet/internal/model"
)

// Post is a content item owned by a User. Likes and comments are gated on the
// acting user's session; the owner is notified of both unless it acted itself.
type Post interface {
	ID() string
	Kind() model.PostKind
	Owner() *User
	CreatedAt() time.Time

	// Render returns the display text of the post's current state.
	Render() string
	// View returns a consistent snapshot for the presentation layer.
	View() model.PostView

	Like(actor *User) error
	Comment(actor *User, text string) error
	Likers() []string
	Comments() []model.Comment
}

// basePost holds the state every variant shares. Likers and comments belong to
// the instance; two posts of the same kind never share them.
type basePost struct {
	id        string
	kind      model.PostKind
	owner     *User
	createdAt time.Time

	mu       sync.RWMutex
	likers   []string
	likerSet map[string]struct{}
	comments []model.Comment
}

func (p *basePost) init(kind model.PostKind, owner *User) {
	p.id = uuid.NewString()
	p.kind = kind
	p.owner = owner
	p.createdAt = time.Now()
	p.likerSet = make(map[string]struct{})
}

func (p *basePost) ID() string           { return p.id }
func (p *basePost) Kind() model.PostKind { return p.kind }
func (p *basePost) Owner() *User         { return p.owner }
func (p *basePost) CreatedAt() time.Time { return p.createdAt }

// Like records actor as a liker. Liking again is a successful no-op.
func (p *basePost) Like(actor *User) error {
	if !p.owner.dir.IsOnline(actor.name) {
		return model.ErrNotAuthorized
	}

	p.mu.Lock()
	if _, liked := p.likerSet[actor.name]; liked {
		p.mu.Unlock()
		return nil
	}
	p.likerSet[actor.name] = struct{}{}
	p.likers = append(p.likers, actor.name)
	p.mu.Unlock()

	notifyOwner(model.ActionLike, actor, p.owner, p.id, "")
	return nil
}

// Comment appends a comment by actor. Comments are never deduplicated.
func (p *basePost) Comment(actor *User, text string) error {
	if !p.owner.dir.IsOnline(actor.name) {
		return model.ErrNotAuthorized
	}
	if strings.TrimSpace(text) == "" {
		return model.ErrContentRequired
	}

	p.mu.Lock()
	p.comments = append(p.comments, model.Comment{
		Author:    actor.name,
		Text:      text,
		CreatedAt: time.Now(),
	})
	p.mu.Unlock()

	notifyOwner(model.ActionComment, actor, p.owner, p.id, text)
	return nil
}

func (p *basePost) Likers() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.likersLocked()
}

func (p *basePost) Comments() []model.Comment {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.commentsLocked()
}

func (p *basePost) likersLocked() []string {
	out := make([]string, len(p.likers))
	copy(out, p.likers)
	return out
}

func (p *basePost) commentsLocked() []model.Comment {
	out := make([]model.Comment, len(p.comments))
	copy(out, p.comments)
	return out
}

// viewLocked must be called with p.mu held.
func (p *basePost) viewLocked(rendered string) model.PostView {
	return model.PostView{
		ID:        p.id,
		Kind:      p.kind,
		Owner:     p.owner.name,
		Rendered:  rendered,
		Likers:    p.likersLocked(),
		Comments:  p.commentsLocked(),
		CreatedAt: p.createdAt,
	}
}

// TextPost is a plain text publication.
type TextPost struct {
	basePost
	content string
}

func newTextPost(owner *User, payload model.TextPayload) *TextPost {
	p := &TextPost{content: payload.Content}
	p.init(model.PostKindText, owner)
	return p
}

func (p *TextPost) Content() string { return p.content }

func (p *TextPost) Render() string {
	return fmt.Sprintf("%s published a post:\n\"%s\"\n", p.owner.name, p.content)
}

func (p *TextPost) View() model.PostView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.viewLocked(p.Render())
}

// ImagePost references a picture stored elsewhere.
type ImagePost struct {
	basePost
	imageURL string
}

func newImagePost(owner *User, payload model.ImagePayload) *ImagePost {
	p := &ImagePost{imageURL: payload.ImageURL}
	p.init(model.PostKindImage, owner)
	return p
}

func (p *ImagePost) ImageURL() string { return p.imageURL }

func (p *ImagePost) Render() string {
	return p.owner.name + " posted a picture\n"
}

func (p *ImagePost) View() model.PostView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.viewLocked(p.Render())
}
