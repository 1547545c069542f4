package v1

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

const dateLayout = "2006-01-02T15:04:05.000Z07:00"

type boardInput struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type uidOutput struct {
	UID int64 `json:"uid"`
}

type boardPageParams struct {
	Page              int     `form:"page"`
	PageElementsCount int     `form:"pageElementsCount"`
	SortingType       string  `form:"sortingTypeEnum" binding:"required"`
	SortingDirection  string  `form:"sortingDirectionEnum" binding:"required"`
	SearchType        *string `form:"searchTypeEnum"`
	SearchKeyword     *string `form:"searchKeyword"`
}

type boardItem struct {
	BoardUID                 int64   `json:"boardUid"`
	Title                    string  `json:"title"`
	CreateDate               string  `json:"createDate"`
	UpdateDate               string  `json:"updateDate"`
	ViewCount                int64   `json:"viewCount"`
	WriterUserUID            int64   `json:"writerUserUid"`
	WriterUserNickname       string  `json:"writerUserNickname"`
	WriterUserProfileFullURL *string `json:"writerUserProfileFullUrl"`
}

type boardPageOutput struct {
	TotalElements   int64       `json:"totalElements"`
	BoardItemVoList []boardItem `json:"boardItemVoList"`
}

type boardDetailOutput struct {
	Title                    string  `json:"title"`
	Content                  string  `json:"content"`
	CreateDate               string  `json:"createDate"`
	UpdateDate               string  `json:"updateDate"`
	ViewCount                int64   `json:"viewCount"`
	WriterUserUID            int64   `json:"writerUserUid"`
	WriterUserNickname       string  `json:"writerUserNickname"`
	WriterUserProfileFullURL *string `json:"writerUserProfileFullUrl"`
}

func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", name, c.Param(name), model.ErrInvalidInput)
	}
	return id, nil
}

func bindError(err error) error {
	return fmt.Errorf("%v: %w", err, model.ErrInvalidInput)
}

func (h *handler) createBoard(c *gin.Context) {
	input := boardInput{}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, bindError(err))
		return
	}

	id, err := h.svc.CreateBoard(c.Request.Context(), c.GetInt64(memberIDKey), input.Title, input.Content)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, uidOutput{UID: id})
}

func (h *handler) getBoardPage(c *gin.Context) {
	params := boardPageParams{}
	if err := c.ShouldBindQuery(&params); err != nil {
		h.fail(c, bindError(err))
		return
	}

	q, err := params.query()
	if err != nil {
		h.fail(c, err)
		return
	}

	page, err := h.svc.BoardPage(c.Request.Context(), q)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := boardPageOutput{TotalElements: page.TotalElements, BoardItemVoList: make([]boardItem, 0, len(page.Items))}
	for _, row := range page.Items {
		out.BoardItemVoList = append(out.BoardItemVoList, boardItem{
			BoardUID:                 row.BoardID,
			Title:                    row.Title,
			CreateDate:               formatDate(row.CreatedAt),
			UpdateDate:               formatDate(row.UpdatedAt),
			ViewCount:                row.ViewCount,
			WriterUserUID:            row.AuthorID,
			WriterUserNickname:       row.AuthorNickname,
			WriterUserProfileFullURL: row.AuthorImageURL,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (bp boardPageParams) query() (model.BoardPageQuery, error) {
	sort, err := model.ParseSortKey(bp.SortingType)
	if err != nil {
		return model.BoardPageQuery{}, err
	}
	direction, err := model.ParseDirection(bp.SortingDirection)
	if err != nil {
		return model.BoardPageQuery{}, err
	}

	q := model.BoardPageQuery{
		Pagination: model.Pagination{Page: bp.Page, PageSize: bp.PageElementsCount},
		Sort:       sort,
		Direction:  direction,
		Keyword:    bp.SearchKeyword,
	}
	if bp.SearchType != nil {
		searchType, err := model.ParseSearchType(*bp.SearchType)
		if err != nil {
			return model.BoardPageQuery{}, err
		}
		q.SearchType = &searchType
	}
	return q, nil
}

func (h *handler) getBoardDetail(c *gin.Context) {
	id, err := pathID(c, "boardUid")
	if err != nil {
		h.fail(c, err)
		return
	}

	detail, err := h.svc.GetBoardDetail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, boardDetailOutput{
		Title:                    detail.Title,
		Content:                  detail.Content,
		CreateDate:               formatDate(detail.CreatedAt),
		UpdateDate:               formatDate(detail.UpdatedAt),
		ViewCount:                detail.ViewCount,
		WriterUserUID:            detail.AuthorID,
		WriterUserNickname:       detail.AuthorNickname,
		WriterUserProfileFullURL: detail.AuthorImageURL,
	})
}

func (h *handler) updateBoard(c *gin.Context) {
	id, err := pathID(c, "boardUid")
	if err != nil {
		h.fail(c, err)
		return
	}
	input := boardInput{}
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, bindError(err))
		return
	}

	if err := h.svc.UpdateBoard(c.Request.Context(), id, c.GetInt64(memberIDKey), input.Title, input.Content); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *handler) incrementViewCount(c *gin.Context) {
	id, err := pathID(c, "boardUid")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.svc.IncrementViewCount(id); err != nil {
		h.log.WithError(err).WithField("board_id", id).Warn("view count increment rejected")
	}
	c.Status(http.StatusOK)
}

func (h *handler) deleteBoard(c *gin.Context) {
	id, err := pathID(c, "boardUid")
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.svc.DeleteBoard(c.Request.Context(), id, c.GetInt64(memberIDKey)); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}
