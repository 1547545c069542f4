package graphql

import (
	"fmt"
	"strconv"

	"github.com/graphql-go/graphql"

	"github.com/gfdmit/web-forum/board-service/internal/model"
)

func parseID(args map[string]interface{}, name string) (*int64, error) {
	raw, ok := args[name].(string)
	if !ok {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s %q: %w", name, raw, model.ErrInvalidInput)
	}
	return &id, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func writer(fields map[string]interface{}, authorID int64, nickname string, image *string) map[string]interface{} {
	fields["writerUserUid"] = formatID(authorID)
	fields["writerUserNickname"] = nickname
	if image != nil {
		fields["writerUserProfileFullUrl"] = *image
	}
	return fields
}

func getBoardPageQuery(gh *gqlHandler, boardPageType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: boardPageType,
		Args: graphql.FieldConfigArgument{
			"page":              &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"pageElementsCount": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"sortingType":       &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(model.SortCreateDate)},
			"sortingDirection":  &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(model.Desc)},
			"searchType":        &graphql.ArgumentConfig{Type: graphql.String},
			"searchKeyword":     &graphql.ArgumentConfig{Type: graphql.String},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			sort, err := model.ParseSortKey(p.Args["sortingType"].(string))
			if err != nil {
				return nil, err
			}
			direction, err := model.ParseDirection(p.Args["sortingDirection"].(string))
			if err != nil {
				return nil, err
			}
			q := model.BoardPageQuery{
				Pagination: model.Pagination{Page: p.Args["page"].(int), PageSize: p.Args["pageElementsCount"].(int)},
				Sort:       sort,
				Direction:  direction,
			}
			if raw, ok := p.Args["searchType"].(string); ok {
				searchType, err := model.ParseSearchType(raw)
				if err != nil {
					return nil, err
				}
				q.SearchType = &searchType
			}
			if keyword, ok := p.Args["searchKeyword"].(string); ok {
				q.Keyword = &keyword
			}

			page, err := gh.svc.BoardPage(p.Context, q)
			if err != nil {
				return nil, err
			}
			items := make([]map[string]interface{}, 0, len(page.Items))
			for _, row := range page.Items {
				items = append(items, writer(map[string]interface{}{
					"boardUid":   formatID(row.BoardID),
					"title":      row.Title,
					"createDate": row.CreatedAt,
					"updateDate": row.UpdatedAt,
					"viewCount":  row.ViewCount,
				}, row.AuthorID, row.AuthorNickname, row.AuthorImageURL))
			}
			return map[string]interface{}{"totalElements": page.TotalElements, "items": items}, nil
		},
	}
}

func getBoardQuery(gh *gqlHandler, boardType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: boardType,
		Args: graphql.FieldConfigArgument{
			"boardUid": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			id, err := parseID(p.Args, "boardUid")
			if err != nil {
				return nil, err
			}
			detail, err := gh.svc.GetBoardDetail(p.Context, *id)
			if err != nil {
				return nil, err
			}
			return writer(map[string]interface{}{
				"boardUid":   formatID(detail.ID),
				"title":      detail.Title,
				"content":    detail.Content,
				"createDate": detail.CreatedAt,
				"updateDate": detail.UpdatedAt,
				"viewCount":  detail.ViewCount,
			}, detail.AuthorID, detail.AuthorNickname, detail.AuthorImageURL), nil
		},
	}
}

func getCommentPageQuery(gh *gqlHandler, commentPageType *graphql.Object) *graphql.Field {
	return &graphql.Field{
		Type: commentPageType,
		Args: graphql.FieldConfigArgument{
			"boardUid":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.ID)},
			"commentUid":        &graphql.ArgumentConfig{Type: graphql.ID},
			"page":              &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
			"pageElementsCount": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.Int)},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			boardID, err := parseID(p.Args, "boardUid")
			if err != nil {
				return nil, err
			}
			parentID, err := parseID(p.Args, "commentUid")
			if err != nil {
				return nil, err
			}

			page, err := gh.svc.CommentPage(p.Context, model.CommentPageQuery{
				Pagination: model.Pagination{Page: p.Args["page"].(int), PageSize: p.Args["pageElementsCount"].(int)},
				BoardID:    *boardID,
				ParentID:   parentID,
			})
			if err != nil {
				return nil, err
			}
			items := make([]map[string]interface{}, 0, len(page.Items))
			for _, row := range page.Items {
				items = append(items, writer(map[string]interface{}{
					"commentUid": formatID(row.CommentID),
					"content":    row.Content,
					"createDate": row.CreatedAt,
					"updateDate": row.UpdatedAt,
				}, row.AuthorID, row.AuthorNickname, row.AuthorImageURL))
			}
			return map[string]interface{}{"totalElements": page.TotalElements, "items": items}, nil
		},
	}
}
