package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/gfdmit/web-forum/board-service/config"
	"github.com/gfdmit/web-forum/board-service/internal/model"

	_ "github.com/golang-migrate/migrate/v4/source/file"
)

const foreignKeyViolation = "23503"

type postgresRepository struct {
	db *sql.DB
}

func New(conf config.Postgres, log logrus.FieldLogger) (*postgresRepository, error) {
	log = log.WithField("source", "postgres")

	db, err := sql.Open("postgres", conf.URL())
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), conf.Timeout)
	defer cancel()
	err = db.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("db.Ping: %v", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres.WithInstance: %v", err)
	}
	migrations := fmt.Sprintf("file://%v", conf.Migrations)
	m, err := migrate.NewWithDatabaseInstance(migrations, conf.DB, driver)
	if err != nil {
		return nil, fmt.Errorf("migrate.NewWithDatabaseInstance: %v", err)
	}
	log.Info("applying migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("nothing to migrate")
		} else {
			return nil, fmt.Errorf("error when migrating: %v", err)
		}
	} else {
		log.Info("migrated successfully!")
	}

	return &postgresRepository{
		db: db,
	}, nil
}

func (pr *postgresRepository) DB() *sql.DB {
	return pr.db
}

func (pr *postgresRepository) Close() error {
	return pr.db.Close()
}

// notFound maps a missing row to model.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return model.ErrNotFound
	}
	return err
}

// unknownMember maps a missing author row to model.ErrUnknownMember.
func unknownMember(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == foreignKeyViolation &&
		(pqErr.Constraint == "boards_author_id_fkey" || pqErr.Constraint == "comments_author_id_fkey") {
		return fmt.Errorf("%w: %v", model.ErrUnknownMember, err)
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBoard(row scanner) (*model.Board, error) {
	board := &model.Board{}
	err := row.Scan(
		&board.ID, &board.AuthorID, &board.Title, &board.Content, &board.ViewCount,
		&board.CreatedAt, &board.UpdatedAt, &board.DeletedAt)
	if err != nil {
		return nil, err
	}
	return board, nil
}

func scanComment(row scanner) (*model.Comment, error) {
	comment := &model.Comment{}
	err := row.Scan(
		&comment.ID, &comment.AuthorID, &comment.BoardID, &comment.ParentID, &comment.Content,
		&comment.CreatedAt, &comment.UpdatedAt, &comment.DeletedAt)
	if err != nil {
		return nil, err
	}
	return comment, nil
}
