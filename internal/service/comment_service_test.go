package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"newsportal/internal/access"
	"newsportal/internal/auth"
	apperr "newsportal/internal/errors"
	"newsportal/internal/model"
	"newsportal/internal/repository"
)

func newTestCommentService() (CommentService, *MockCommentRepository, *MockArticleRepository) {
	comments := new(MockCommentRepository)
	articles := new(MockArticleRepository)
	return NewCommentService(comments, articles, access.MustNew()), comments, articles
}

func TestCommentService_CreateApproval(t *testing.T) {
	articleID := uuid.New()

	tests := []struct {
		name     string
		caller   *auth.Identity
		approved bool
	}{
		{name: "user comment waits for moderation", caller: asUser(), approved: false},
		{name: "editor comment is approved", caller: asEditor(), approved: true},
		{name: "admin comment is approved", caller: asAdmin(), approved: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, comments, articles := newTestCommentService()
			articles.On("FindByID", mock.Anything, articleID).Return(&model.Article{ID: articleID, Status: model.StatusPublished}, nil)
			comments.On("Create", mock.Anything, mock.AnythingOfType("*model.Comment")).Return(nil)
			comments.On("FindByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

			c, err := svc.Create(context.Background(), tt.caller, articleID, "<b>Nice</b> piece<script>alert(1)</script>", nil)
			require.NoError(t, err)

			assert.Equal(t, tt.approved, c.Approved)
			assert.Equal(t, "Nice piece", c.Content)
			assert.Nil(t, c.ParentID)
			assert.Equal(t, articleID, c.ArticleID)
		})
	}
}

func TestCommentService_ReplyToReplyIsFlattened(t *testing.T) {
	articleID := uuid.New()
	topID := uuid.New()
	replyID := uuid.New()

	tests := []struct {
		name   string
		parent *model.Comment
	}{
		{name: "reply to top-level", parent: &model.Comment{ID: topID, ArticleID: articleID}},
		{name: "reply to reply", parent: &model.Comment{ID: replyID, ArticleID: articleID, ParentID: &topID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, comments, articles := newTestCommentService()
			articles.On("FindByID", mock.Anything, articleID).Return(&model.Article{ID: articleID, Status: model.StatusPublished}, nil)
			comments.On("FindInArticle", mock.Anything, tt.parent.ID, articleID).Return(tt.parent, nil)
			comments.On("Create", mock.Anything, mock.AnythingOfType("*model.Comment")).Return(nil)
			comments.On("FindByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

			parent := tt.parent.ID
			c, err := svc.Create(context.Background(), asUser(), articleID, "agreed", &parent)
			require.NoError(t, err)
			require.NotNil(t, c.ParentID)
			assert.Equal(t, topID, *c.ParentID)
		})
	}
}

func TestCommentService_CreateErrors(t *testing.T) {
	articleID := uuid.New()
	ctx := context.Background()

	t.Run("anonymous", func(t *testing.T) {
		svc, _, _ := newTestCommentService()
		_, err := svc.Create(ctx, nil, articleID, "hi", nil)
		assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	})

	t.Run("only markup", func(t *testing.T) {
		svc, _, _ := newTestCommentService()
		_, err := svc.Create(ctx, asUser(), articleID, "<img src=x>", nil)
		assert.ErrorIs(t, err, ErrEmptyComment)
	})

	t.Run("missing article", func(t *testing.T) {
		svc, _, articles := newTestCommentService()
		articles.On("FindByID", mock.Anything, articleID).Return(nil, gorm.ErrRecordNotFound)
		_, err := svc.Create(ctx, asUser(), articleID, "hi", nil)
		assert.ErrorIs(t, err, apperr.ErrArticleNotFound)
	})

	t.Run("parent in another article", func(t *testing.T) {
		svc, comments, articles := newTestCommentService()
		parent := uuid.New()
		articles.On("FindByID", mock.Anything, articleID).Return(&model.Article{ID: articleID, Status: model.StatusPublished}, nil)
		comments.On("FindInArticle", mock.Anything, parent, articleID).Return(nil, gorm.ErrRecordNotFound)
		_, err := svc.Create(ctx, asUser(), articleID, "hi", &parent)
		assert.ErrorIs(t, err, apperr.ErrParentCommentNotFound)
		comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCommentService_ListAttachesReplies(t *testing.T) {
	articleID := uuid.New()
	a, b := uuid.New(), uuid.New()
	top := []model.Comment{{ID: a, ArticleID: articleID, Approved: true}, {ID: b, ArticleID: articleID, Approved: true}}
	replies := []model.Comment{
		{ID: uuid.New(), ParentID: &a, Content: "first", Approved: true},
		{ID: uuid.New(), ParentID: &a, Content: "second", Approved: true},
	}

	svc, comments, articles := newTestCommentService()
	articles.On("FindByID", mock.Anything, articleID).Return(&model.Article{ID: articleID, Status: model.StatusPublished}, nil)
	comments.On("ListApprovedTopLevel", mock.Anything, articleID, repository.Page{Page: 1, Limit: 20}).Return(top, int64(2), nil)
	comments.On("ListApprovedReplies", mock.Anything, []uuid.UUID{a, b}).Return(replies, nil)

	res, err := svc.List(context.Background(), nil, articleID, 0, 0)
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	require.Len(t, res.Items[0].Replies, 2)
	assert.Equal(t, "first", res.Items[0].Replies[0].Content)
	assert.Equal(t, "second", res.Items[0].Replies[1].Content)
	assert.NotNil(t, res.Items[1].Replies)
	assert.Empty(t, res.Items[1].Replies)
	assert.Equal(t, int64(2), res.Total)
	assert.Equal(t, 1, res.TotalPages())
}

func TestCommentService_ListMissingArticle(t *testing.T) {
	articleID := uuid.New()
	svc, _, articles := newTestCommentService()
	articles.On("FindByID", mock.Anything, articleID).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.List(context.Background(), nil, articleID, 1, 20)
	assert.ErrorIs(t, err, apperr.ErrArticleNotFound)
}

func TestCommentService_HiddenArticle(t *testing.T) {
	articleID := uuid.New()

	tests := []struct {
		name    string
		status  string
		caller  *auth.Identity
		visible bool
	}{
		{name: "published to anonymous", status: model.StatusPublished, caller: nil, visible: true},
		{name: "draft to anonymous", status: model.StatusDraft, caller: nil},
		{name: "draft to another user", status: model.StatusDraft, caller: asOther()},
		{name: "archived to another user", status: model.StatusArchived, caller: asOther()},
		{name: "draft to its author", status: model.StatusDraft, caller: asUser(), visible: true},
		{name: "draft to an editor", status: model.StatusDraft, caller: asEditor(), visible: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, comments, articles := newTestCommentService()
			articles.On("FindByID", mock.Anything, articleID).
				Return(&model.Article{ID: articleID, AuthorID: userID, Status: tt.status}, nil)
			comments.On("ListApprovedTopLevel", mock.Anything, articleID, mock.Anything).Return([]model.Comment{}, int64(0), nil)
			comments.On("Create", mock.Anything, mock.AnythingOfType("*model.Comment")).Return(nil)
			comments.On("FindByID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

			_, listErr := svc.List(context.Background(), tt.caller, articleID, 1, 20)
			if tt.visible {
				assert.NoError(t, listErr)
			} else {
				assert.ErrorIs(t, listErr, apperr.ErrArticleNotFound)
			}

			if tt.caller == nil {
				return
			}
			_, createErr := svc.Create(context.Background(), tt.caller, articleID, "hello", nil)
			if tt.visible {
				assert.NoError(t, createErr)
			} else {
				assert.ErrorIs(t, createErr, apperr.ErrArticleNotFound)
				comments.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestCommentService_Moderate(t *testing.T) {
	commentID := uuid.New()

	tests := []struct {
		name          string
		caller        *auth.Identity
		expectedError error
	}{
		{name: "editor", caller: asEditor()},
		{name: "admin", caller: asAdmin()},
		{name: "user", caller: asUser(), expectedError: apperr.ErrAccessDenied},
		{name: "anonymous", caller: nil, expectedError: apperr.ErrAuthRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, comments, _ := newTestCommentService()
			if tt.expectedError == nil {
				comments.On("FindByID", mock.Anything, commentID).Return(&model.Comment{ID: commentID}, nil)
				comments.On("SetApproved", mock.Anything, commentID, true).Return(nil)
			}

			c, err := svc.Moderate(context.Background(), tt.caller, commentID, true)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				comments.AssertNotCalled(t, "SetApproved", mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.True(t, c.Approved)
			comments.AssertExpectations(t)
		})
	}
}

func TestCommentService_DeleteCascadesReplies(t *testing.T) {
	topID := uuid.New()
	svc, comments, _ := newTestCommentService()
	comments.On("FindByID", mock.Anything, topID).Return(&model.Comment{ID: topID, AuthorID: userID}, nil)
	comments.On("WithTransaction", mock.Anything).Return()
	comments.On("DeleteReplies", mock.Anything, topID).Return(int64(3), nil)
	comments.On("Delete", mock.Anything, topID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), asUser(), topID))
	comments.AssertExpectations(t)
}

func TestCommentService_DeleteReplyLeavesSiblings(t *testing.T) {
	parent := uuid.New()
	replyID := uuid.New()
	svc, comments, _ := newTestCommentService()
	comments.On("FindByID", mock.Anything, replyID).Return(&model.Comment{ID: replyID, AuthorID: userID, ParentID: &parent}, nil)
	comments.On("WithTransaction", mock.Anything).Return()
	comments.On("Delete", mock.Anything, replyID).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), asUser(), replyID))
	comments.AssertNotCalled(t, "DeleteReplies", mock.Anything, mock.Anything)
}

func TestCommentService_DeleteGate(t *testing.T) {
	commentID := uuid.New()

	tests := []struct {
		name          string
		caller        *auth.Identity
		expectedError error
	}{
		{name: "editor may delete others' comments", caller: asEditor()},
		{name: "other user may not", caller: asOther(), expectedError: apperr.ErrAccessDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, comments, _ := newTestCommentService()
			comments.On("FindByID", mock.Anything, commentID).Return(&model.Comment{ID: commentID, AuthorID: userID}, nil)
			if tt.expectedError == nil {
				comments.On("WithTransaction", mock.Anything).Return()
				comments.On("DeleteReplies", mock.Anything, commentID).Return(int64(0), nil)
				comments.On("Delete", mock.Anything, commentID).Return(nil)
			}

			err := svc.Delete(context.Background(), tt.caller, commentID)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
				return
			}
			assert.NoError(t, err)
		})
	}
}
