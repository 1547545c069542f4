package graphql

import (
	"time"

	"github.com/graphql-go/graphql"
)

const dateLayout = "2006-01-02T15:04:05.000Z07:00"

var DateTime = graphql.NewScalar(
	graphql.ScalarConfig{
		Name:        "DateTime",
		Description: "DateTime scalar type",
		Serialize: func(value interface{}) interface{} {
			switch v := value.(type) {
			case time.Time:
				return v.Format(dateLayout)
			case *time.Time:
				if v == nil {
					return nil
				}
				return v.Format(dateLayout)
			default:
				return nil
			}
		},
	},
)

func (gh *gqlHandler) initSchema() error {
	writerFields := func(fields graphql.Fields) graphql.Fields {
		fields["writerUserUid"] = &graphql.Field{Type: graphql.ID}
		fields["writerUserNickname"] = &graphql.Field{Type: graphql.String}
		fields["writerUserProfileFullUrl"] = &graphql.Field{Type: graphql.String}
		return fields
	}

	boardItemType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "BoardItem",
			Fields: writerFields(graphql.Fields{
				"boardUid":   &graphql.Field{Type: graphql.ID},
				"title":      &graphql.Field{Type: graphql.String},
				"createDate": &graphql.Field{Type: DateTime},
				"updateDate": &graphql.Field{Type: DateTime},
				"viewCount":  &graphql.Field{Type: graphql.Int},
			}),
		},
	)

	boardType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Board",
			Fields: writerFields(graphql.Fields{
				"boardUid":   &graphql.Field{Type: graphql.ID},
				"title":      &graphql.Field{Type: graphql.String},
				"content":    &graphql.Field{Type: graphql.String},
				"createDate": &graphql.Field{Type: DateTime},
				"updateDate": &graphql.Field{Type: DateTime},
				"viewCount":  &graphql.Field{Type: graphql.Int},
			}),
		},
	)

	commentItemType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "CommentItem",
			Fields: writerFields(graphql.Fields{
				"commentUid": &graphql.Field{Type: graphql.ID},
				"content":    &graphql.Field{Type: graphql.String},
				"createDate": &graphql.Field{Type: DateTime},
				"updateDate": &graphql.Field{Type: DateTime},
			}),
		},
	)

	boardPageType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "BoardPage",
			Fields: graphql.Fields{
				"totalElements": &graphql.Field{Type: graphql.Int},
				"items":         &graphql.Field{Type: graphql.NewList(boardItemType)},
			},
		},
	)

	commentPageType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "CommentPage",
			Fields: graphql.Fields{
				"totalElements": &graphql.Field{Type: graphql.Int},
				"items":         &graphql.Field{Type: graphql.NewList(commentItemType)},
			},
		},
	)

	queryType := graphql.NewObject(
		graphql.ObjectConfig{
			Name: "Query",
			Fields: graphql.Fields{
				"boardPage":   getBoardPageQuery(gh, boardPageType),
				"board":       getBoardQuery(gh, boardType),
				"commentPage": getCommentPageQuery(gh, commentPageType),
			},
		},
	)

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return err
	}
	gh.schema = schema

	return nil
}
