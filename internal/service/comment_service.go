package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"newsportal/internal/access"
	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
	"newsportal/internal/markdown"
	"newsportal/internal/model"
	"newsportal/internal/repository"
)

const (
	defaultCommentPageSize = 20
	maxCommentLength       = 1000
)

// ErrEmptyComment is returned when a comment has no text after sanitizing.
var ErrEmptyComment = apperr.Validation("comment content is required", "VALIDATION_FAILED")

// CommentService exposes comment threads and moderation.
type CommentService interface {
	List(ctx context.Context, caller *auth.Identity, articleID uuid.UUID, page, limit int) (*PageResult[model.Comment], error)
	Create(ctx context.Context, caller *auth.Identity, articleID uuid.UUID, content string, parentID *uuid.UUID) (*model.Comment, error)
	Moderate(ctx context.Context, caller *auth.Identity, id uuid.UUID, approved bool) (*model.Comment, error)
	Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) error
}

type commentService struct {
	comments repository.CommentRepository
	articles repository.ArticleRepository
	acl      *access.Controller
}

// NewCommentService builds a CommentService.
func NewCommentService(comments repository.CommentRepository, articles repository.ArticleRepository, acl *access.Controller) CommentService {
	return &commentService{comments: comments, articles: articles, acl: acl}
}

// List returns approved top-level comments, newest first, each with its
// approved replies oldest first. Articles the caller cannot read answer
// not found.
func (s *commentService) List(ctx context.Context, caller *auth.Identity, articleID uuid.UUID, page, limit int) (*PageResult[model.Comment], error) {
	if _, err := s.visibleArticle(ctx, caller, articleID); err != nil {
		return nil, err
	}

	p := normalizePage(page, limit, defaultCommentPageSize)
	top, total, err := s.comments.ListApprovedTopLevel(ctx, articleID, p)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	if len(top) > 0 {
		ids := make([]uuid.UUID, len(top))
		for i := range top {
			ids[i] = top[i].ID
		}
		replies, err := s.comments.ListApprovedReplies(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("list replies: %w", err)
		}

		byParent := make(map[uuid.UUID][]model.Comment, len(top))
		for _, r := range replies {
			if r.ParentID != nil {
				byParent[*r.ParentID] = append(byParent[*r.ParentID], r)
			}
		}
		for i := range top {
			top[i].Replies = byParent[top[i].ID]
			if top[i].Replies == nil {
				top[i].Replies = []model.Comment{}
			}
		}
	}

	return &PageResult[model.Comment]{Items: top, Page: p.Page, Limit: p.Limit, Total: total}, nil
}

// Create adds a comment. Replies always hang off a top-level comment, so a
// reply to a reply is attached to its parent's parent. Comments by callers
// who can moderate are approved immediately.
func (s *commentService) Create(ctx context.Context, caller *auth.Identity, articleID uuid.UUID, content string, parentID *uuid.UUID) (*model.Comment, error) {
	authorID, err := callerID(caller)
	if err != nil {
		return nil, err
	}

	text := markdown.PlainText(content)
	if text == "" {
		return nil, ErrEmptyComment
	}
	if len([]rune(text)) > maxCommentLength {
		return nil, apperr.Validation(fmt.Sprintf("comment must be at most %d characters", maxCommentLength), "VALIDATION_FAILED")
	}

	if _, err := s.visibleArticle(ctx, caller, articleID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		ArticleID: articleID,
		AuthorID:  authorID,
		Content:   text,
		Approved:  s.acl.Allowed(caller, access.CommentModerate),
	}

	if parentID != nil {
		parent, err := s.comments.FindInArticle(ctx, *parentID, articleID)
		if err != nil {
			return nil, notFound(err, apperr.ErrParentCommentNotFound)
		}
		target := parent.ID
		if parent.ParentID != nil {
			target = *parent.ParentID
		}
		comment.ParentID = &target
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if stored, err := s.comments.FindByID(ctx, comment.ID); err == nil {
		return stored, nil
	}
	return comment, nil
}

func (s *commentService) visibleArticle(ctx context.Context, caller *auth.Identity, id uuid.UUID) (*model.Article, error) {
	article, err := s.articles.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.ErrArticleNotFound)
	}
	if !articleVisible(s.acl, caller, article) {
		return nil, apperr.ErrArticleNotFound
	}
	return article, nil
}

func (s *commentService) Moderate(ctx context.Context, caller *auth.Identity, id uuid.UUID, approved bool) (*model.Comment, error) {
	if err := s.acl.RequireRole(caller, access.CommentModerate); err != nil {
		return nil, err
	}
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperr.ErrCommentNotFound)
	}
	if err := s.comments.SetApproved(ctx, id, approved); err != nil {
		return nil, notFound(err, apperr.ErrCommentNotFound)
	}
	comment.Approved = approved
	return comment, nil
}

// Delete removes a comment. Deleting a top-level comment removes its
// replies in the same transaction.
func (s *commentService) Delete(ctx context.Context, caller *auth.Identity, id uuid.UUID) error {
	if err := s.acl.Authenticated(caller); err != nil {
		return err
	}
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return notFound(err, apperr.ErrCommentNotFound)
	}
	if err := s.acl.RequireOwnerOr(caller, comment.AuthorID, access.CommentManage); err != nil {
		return err
	}

	var replies int64
	err = s.comments.WithTransaction(ctx, func(ctx context.Context, repo repository.CommentRepository) error {
		if comment.IsTopLevel() {
			n, err := repo.DeleteReplies(ctx, comment.ID)
			if err != nil {
				return fmt.Errorf("delete replies: %w", err)
			}
			replies = n
		}
		return repo.Delete(ctx, comment.ID)
	})
	if err != nil {
		return notFound(err, apperr.ErrCommentNotFound)
	}

	slog.Info("comment deleted", "comment_id", id, "replies_removed", replies, "by", caller.ID)
	return nil
}
