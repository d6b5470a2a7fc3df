package http

import (
	"time"

	"github.com/saazhq/saaz/internal/saaz/domain"
	"github.com/saazhq/saaz/internal/saaz/service"
	"github.com/saazhq/saaz/pkg/saazsdk"
)

func toAuthResponse(message string, sess service.Session) saazsdk.AuthResponse {
	u := sess.Account.User
	return saazsdk.AuthResponse{
		Message: message,
		Token:   sess.Token,
		User: saazsdk.User{
			ID:       u.ID,
			Email:    u.Email,
			Name:     u.Name,
			Role:     u.Role.String(),
			Username: u.Username,
			Image:    sess.Account.Image(),
		},
	}
}

func toArtistProfile(p *domain.ArtistProfile) *saazsdk.ArtistProfile {
	if p == nil {
		return nil
	}
	return &saazsdk.ArtistProfile{
		Category: p.Category,
		Location: p.Location,
		Bio:      p.Bio,
		Price:    p.Price,
		Image:    p.Image,
	}
}

func toVenueProfile(p *domain.VenueProfile) *saazsdk.VenueProfile {
	if p == nil {
		return nil
	}
	return &saazsdk.VenueProfile{
		Type:       p.Type,
		Location:   p.Location,
		Capacity:   p.Capacity,
		LookingFor: p.LookingFor,
		Image:      p.Image,
	}
}

func toEvent(e domain.Event, now time.Time) saazsdk.Event {
	return saazsdk.Event{
		ID:          e.ID,
		Title:       e.Title,
		Date:        e.Date,
		Location:    e.Location,
		Description: e.Description,
		Price:       e.Price,
		Image:       e.Image,
		Status:      string(e.Status(now)),
		CreatorID:   e.CreatorID,
		CreatedAt:   e.CreatedAt,
	}
}

func toEventListing(l domain.EventListing, now time.Time) saazsdk.Event {
	ev := toEvent(l.Event, now)
	ev.Creator = &saazsdk.EventCreator{
		ID:       l.Creator.ID,
		Name:     l.Creator.Name,
		Role:     l.Creator.Role.String(),
		Category: l.Creator.Category,
		Type:     l.Creator.Type,
	}
	return ev
}

func toProfile(p service.Profile, now time.Time) saazsdk.Profile {
	u := p.Account.User
	events := make([]saazsdk.Event, 0, len(p.Events))
	for _, e := range p.Events {
		events = append(events, toEvent(e, now))
	}
	image := u.Image
	if img := p.Account.Image(); img != "" {
		image = img
	}
	return saazsdk.Profile{
		ID:            u.ID,
		Email:         u.Email,
		Username:      u.Username,
		Name:          u.Name,
		Role:          u.Role.String(),
		Image:         image,
		Location:      u.Location,
		GoogleLinked:  u.GoogleID != "",
		CreatedAt:     u.CreatedAt,
		ArtistProfile: toArtistProfile(p.Account.Artist),
		VenueProfile:  toVenueProfile(p.Account.Venue),
		Events:        events,
	}
}

func toPublicUser(a domain.Account) saazsdk.PublicUser {
	return saazsdk.PublicUser{
		ID:            a.User.ID,
		Name:          a.User.Name,
		Role:          a.User.Role.String(),
		ArtistProfile: toArtistProfile(a.Artist),
		VenueProfile:  toVenueProfile(a.Venue),
	}
}
