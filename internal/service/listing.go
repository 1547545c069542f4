package service

import (
	"context"
	"fmt"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

// imageCache memoizes author images for the duration of one listing call.
type imageCache map[int64]*string

func (svc *Service) BoardPage(p context.Context, q model.BoardPageQuery) (model.Page[model.BoardRow], error) {
	page, err := svc.repo.BoardPage(p, q)
	if err != nil {
		return model.Page[model.BoardRow]{}, fmt.Errorf("service.BoardPage: %w", err)
	}

	cache := imageCache{}
	for i := range page.Items {
		page.Items[i].AuthorImageURL, err = svc.cachedAuthorImage(p, cache, page.Items[i].AuthorID)
		if err != nil {
			return model.Page[model.BoardRow]{}, fmt.Errorf("service.BoardPage: %w", err)
		}
	}
	return page, nil
}

func (svc *Service) CommentPage(p context.Context, q model.CommentPageQuery) (model.Page[model.CommentRow], error) {
	page, err := svc.repo.CommentPage(p, q)
	if err != nil {
		return model.Page[model.CommentRow]{}, fmt.Errorf("service.CommentPage: %w", err)
	}

	cache := imageCache{}
	for i := range page.Items {
		page.Items[i].AuthorImageURL, err = svc.cachedAuthorImage(p, cache, page.Items[i].AuthorID)
		if err != nil {
			return model.Page[model.CommentRow]{}, fmt.Errorf("service.CommentPage: %w", err)
		}
	}
	return page, nil
}

func (svc *Service) cachedAuthorImage(p context.Context, cache imageCache, memberID int64) (*string, error) {
	if image, ok := cache[memberID]; ok {
		return image, nil
	}
	image, err := svc.authorImage(p, memberID)
	if err != nil {
		return nil, err
	}
	cache[memberID] = image
	return image, nil
}

// authorImage returns the image of the member's highest ranked live profile,
// or nil when there is none. An image that cannot be resolved is left out.
func (svc *Service) authorImage(p context.Context, memberID int64) (*string, error) {
	profiles, err := svc.repo.GetProfiles(p, memberID)
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, nil
	}

	image, err := svc.media.Resolve(p, profiles[0].ImageURL)
	if err != nil {
		svc.log.WithError(err).WithField("member_id", memberID).Warn("profile image not resolved")
		return nil, nil
	}
	return &image, nil
}
