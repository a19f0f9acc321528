package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AlekSi/pointer"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const (
	AudienceMale   = "Мужской"
	AudienceFemale = "Женский"
)

var (
	// ErrAlreadyExists — от этого пользователя комплимент уже есть.
	ErrAlreadyExists = errors.New("compliment already exists")
	ErrNotFound      = errors.New("compliment not found")
)

// Compliment хранится с id, равным telegram_id отправителя: не больше
// одного активного комплимента на пользователя.
type Compliment struct {
	ID             string `db:"id"`
	Text           string `db:"text"`
	TargetAudience string `db:"target_audience"`
	Approved       bool   `db:"approved"`
}

type ComplimentRepository struct {
	db *sqlx.DB
}

func NewComplimentRepository(db *sqlx.DB) *ComplimentRepository {
	return &ComplimentRepository{
		db: db,
	}
}

func (r *ComplimentRepository) Create(c *Compliment) error {
	_, err := r.db.Exec(`
	    INSERT INTO compliments (id, text, target_audience)
		VALUES ($1, $2, $3)
	`,
		c.ID,
		c.Text,
		c.TargetAudience,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyExists
		}

		return fmt.Errorf("ComplimentRepository.Create: %w", err)
	}

	return nil
}

func (r *ComplimentRepository) GetByID(id string) (*Compliment, error) {
	var c Compliment

	err := r.db.Get(&c, `
	    SELECT id, text, target_audience, approved
		FROM compliments
		WHERE id = $1
	`, id)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("ComplimentRepository.GetByID: %w", err)
	}

	return pointer.To(c), nil
}

func (r *ComplimentRepository) Exists(id string) (bool, error) {
	var count int

	err := r.db.Get(&count, `
	    SELECT COUNT(*) FROM compliments
		WHERE id = $1
	`, id)

	if err != nil {
		return false, fmt.Errorf("ComplimentRepository.Exists: %w", err)
	}

	return count > 0, nil
}

func (r *ComplimentRepository) UpdateText(id string, text string) error {
	res, err := r.db.Exec(`
	    UPDATE compliments
		SET text = $1
		WHERE id = $2
	`, text, id)

	if err != nil {
		return fmt.Errorf("ComplimentRepository.UpdateText: %w", err)
	}

	return checkAffected(res, "ComplimentRepository.UpdateText")
}

func (r *ComplimentRepository) Approve(id string) error {
	res, err := r.db.Exec(`
	    UPDATE compliments
		SET approved = TRUE
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("ComplimentRepository.Approve: %w", err)
	}

	return checkAffected(res, "ComplimentRepository.Approve")
}

func (r *ComplimentRepository) Delete(id string) error {
	res, err := r.db.Exec(`
	    DELETE FROM compliments
		WHERE id = $1
	`, id)

	if err != nil {
		return fmt.Errorf("ComplimentRepository.Delete: %w", err)
	}

	return checkAffected(res, "ComplimentRepository.Delete")
}

// ApproveAll одобряет перечисленные комплименты одним запросом.
// Уже исчезнувшие id молча пропускаются.
func (r *ComplimentRepository) ApproveAll(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`UPDATE compliments SET approved = TRUE WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("ComplimentRepository.ApproveAll: %w", err)
	}

	res, err := r.db.Exec(r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("ComplimentRepository.ApproveAll: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ComplimentRepository.ApproveAll: %w", err)
	}

	return affected, nil
}

func (r *ComplimentRepository) DeleteAll(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query, args, err := sqlx.In(`DELETE FROM compliments WHERE id IN (?)`, ids)
	if err != nil {
		return 0, fmt.Errorf("ComplimentRepository.DeleteAll: %w", err)
	}

	res, err := r.db.Exec(r.db.Rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("ComplimentRepository.DeleteAll: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("ComplimentRepository.DeleteAll: %w", err)
	}

	return affected, nil
}

// ListPending возвращает неодобренные комплименты в стабильном порядке
// по id, чтобы повторный рендер страницы модерации совпадал.
func (r *ComplimentRepository) ListPending(limit int) ([]Compliment, error) {
	var compliments []Compliment

	err := r.db.Select(&compliments, `
	    SELECT id, text, target_audience, approved
		FROM compliments
		WHERE approved = FALSE
		ORDER BY id ASC
		LIMIT $1
	`, limit)

	if err != nil {
		return nil, fmt.Errorf("ComplimentRepository.ListPending: %w", err)
	}

	return compliments, nil
}

// GetRandomApproved возвращает случайный одобренный комплимент для
// указанной аудитории, nil — если таких нет.
func (r *ComplimentRepository) GetRandomApproved(targetAudience string) (*Compliment, error) {
	var c Compliment

	err := r.db.Get(&c, `
	    SELECT id, text, target_audience, approved
		FROM compliments
		WHERE approved = TRUE AND target_audience = $1
		ORDER BY RANDOM()
		LIMIT 1
	`, targetAudience)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("ComplimentRepository.GetRandomApproved: %w", err)
	}

	return pointer.To(c), nil
}

// SeedInitial добавляет стартовый набор одобренных комплиментов.
// Выполняется один раз: если таблица не пуста, ничего не делает.
func (r *ComplimentRepository) SeedInitial() error {
	var count int

	err := r.db.Get(&count, `SELECT COUNT(*) FROM compliments`)
	if err != nil {
		return fmt.Errorf("ComplimentRepository.SeedInitial: %w", err)
	}

	if count > 0 {
		return nil
	}

	seed := []Compliment{
		{ID: "1", Text: "Вы сильные!", TargetAudience: AudienceMale, Approved: true},
		{ID: "2", Text: "Пусть работа будет мёдом!", TargetAudience: AudienceMale, Approved: true},
		{ID: "3", Text: "Самые умные мужчинки на свете!", TargetAudience: AudienceMale, Approved: true},
		{ID: "4", Text: "Ваше мужское на высоте!", TargetAudience: AudienceMale, Approved: true},
		{ID: "5", Text: "Наши спасители!", TargetAudience: AudienceMale, Approved: true},
		{ID: "6", Text: "Самые красивые из красивых!", TargetAudience: AudienceFemale, Approved: true},
		{ID: "7", Text: "Красоточки, всем привет!", TargetAudience: AudienceFemale, Approved: true},
		{ID: "8", Text: "Лучшие на свете!", TargetAudience: AudienceFemale, Approved: true},
		{ID: "9", Text: "Кустик роз вам всем!", TargetAudience: AudienceFemale, Approved: true},
		{ID: "10", Text: "Обаятельные принцессы!", TargetAudience: AudienceFemale, Approved: true},
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return fmt.Errorf("ComplimentRepository.SeedInitial: %w", err)
	}

	for _, c := range seed {
		_, err := tx.Exec(`
		    INSERT INTO compliments (id, text, target_audience, approved)
			VALUES ($1, $2, $3, $4)
		`, c.ID, c.Text, c.TargetAudience, c.Approved)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("ComplimentRepository.SeedInitial: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("ComplimentRepository.SeedInitial: %w", err)
	}

	return nil
}

func checkAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
