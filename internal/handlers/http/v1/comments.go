package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

type createCommentInput struct {
	BoardUID   int64  `json:"boardUid" binding:"required"`
	CommentUID *int64 `json:"commentUid"`
	Content    string `json:"content" binding:"required"`
}

type updateCommentInput struct {
	Content string `json:"content" binding:"required"`
}

type commentPageParams struct {
	CommentUID        *int64 `form:"commentUid"`
	Page              int    `form:"page"`
	PageElementsCount int    `form:"pageElementsCount"`
}

type commentItem struct {
	CommentUID               int64   `json:"commentUid"`
	Content                  string  `json:"content"`
	CreateDate               string  `json:"createDate"`
	UpdateDate               string  `json:"updateDate"`
	WriterUserUID            int64   `json:"writerUserUid"`
	WriterUserNickname       string  `json:"writerUserNickname"`
	WriterUserProfileFullURL *string `json:"writerUserProfileFullUrl"`
}

type commentPageOutput struct {
	TotalElements     int64         `json:"totalElements"`
	CommentItemVoList []commentItem `json:"commentItemVoList"`
}

func (h *handler) createComment(c *gin.Context) {
	input := createCommentInput{}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, bindError(err))
		return
	}

	id, err := h.svc.CreateComment(c.Request.Context(), c.GetInt64(memberIDKey), input.BoardUID, input.CommentUID, input.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, uidOutput{UID: id})
}

func (h *handler) getCommentPage(c *gin.Context) {
	boardID, err := pathID(c, "boardUid")
	if err != nil {
		h.fail(c, err)
		return
	}
	params := commentPageParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		h.fail(c, bindError(err))
		return
	}

	page, err := h.svc.CommentPage(c.Request.Context(), model.CommentPageQuery{
		Pagination: model.Pagination{Page: params.Page, PageSize: params.PageElementsCount},
		BoardID:    boardID,
		ParentID:   params.CommentUID,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	out := commentPageOutput{TotalElements: page.TotalElements, CommentItemVoList: make([]commentItem, 0, len(page.Items))}
	for _, row := range page.Items {
		out.CommentItemVoList = append(out.CommentItemVoList, commentItem{
			CommentUID:               row.CommentID,
			Content:                  row.Content,
			CreateDate:               formatDate(row.CreatedAt),
			UpdateDate:               formatDate(row.UpdatedAt),
			WriterUserUID:            row.AuthorID,
			WriterUserNickname:       row.AuthorNickname,
			WriterUserProfileFullURL: row.AuthorImageURL,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *handler) updateComment(c *gin.Context) {
	id, err := pathID(c, "commentUid")
	if err != nil {
		h.fail(c, err)
		return
	}
	input := updateCommentInput{}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, bindError(err))
		return
	}

	if err := h.svc.UpdateComment(c.Request.Context(), id, c.GetInt64(memberIDKey), input.Content); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *handler) deleteComment(c *gin.Context) {
	id, err := pathID(c, "commentUid")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.svc.DeleteComment(c.Request.Context(), id, c.GetInt64(memberIDKey)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}
