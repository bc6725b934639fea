package seed

import (
	"fmt"
	"log"
	"math/rand/v2"

	"boardapi/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers  int
	NumBoards int
	// ShouldClean wipes every board table before seeding.
	ShouldClean bool
	// SkipBcrypt stores DefaultPassword unhashed; such accounts cannot sign in.
	SkipBcrypt bool
	DryRun     bool
	BatchSize  int
	// MaxDays bounds how far back board creation times are spread.
	MaxDays int
	// RandSeed makes a run reproducible when non-zero.
	RandSeed int64
}

// Result counts what a Seed run created.
type Result struct {
	Users     int
	Boards    int
	Comments  int
	Images    int
	Likes     int
	Bookmarks int
}

// clearOrder lists tables children first so plain DELETEs respect foreign keys.
var clearOrder = []string{"likes", "bookmarks", "comments", "images", "boards", "users"}

// Seed populates the database with users, boards and the engagement on them.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("🌱 Seeding %d users and %d boards...", opts.NumUsers, opts.NumBoards)
	if opts.NumUsers <= 0 {
		return nil, fmt.Errorf("seed needs at least one user")
	}

	if opts.ShouldClean && !opts.DryRun {
		if err := ClearAll(db); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	f := NewFactory(db, opts)
	// #nosec G404: acceptable for seeding
	r := rand.New(rand.NewPCG(uint64(f.faker.Int64()), 0))
	res := &Result{}

	users := make([]*models.User, 0, opts.NumUsers)
	for range opts.NumUsers {
		u, err := f.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		users = append(users, u)
	}
	res.Users = len(users)
	log.Printf("✓ %d users created", res.Users)

	boards := make([]*models.Board, 0, opts.NumBoards)
	for range opts.NumBoards {
		boards = append(boards, f.BuildBoard(users[r.IntN(len(users))]))
	}
	if err := f.CreateBoardsBatch(boards); err != nil {
		return nil, fmt.Errorf("failed to create boards: %w", err)
	}
	res.Boards = len(boards)
	log.Printf("✓ %d boards created", res.Boards)

	for _, b := range boards {
		if r.Float32() < 0.3 {
			if _, err := f.CreateImage(b); err != nil {
				return nil, fmt.Errorf("failed to create image: %w", err)
			}
			res.Images++
		}

		for range r.IntN(4) {
			if _, err := f.CreateComment(users[r.IntN(len(users))], b); err != nil {
				return nil, fmt.Errorf("failed to create comment: %w", err)
			}
			res.Comments++
		}

		// Each user reacts at most once per board.
		for _, u := range users {
			if r.Float32() < 0.2 {
				if err := f.CreateLike(u, b); err != nil {
					return nil, fmt.Errorf("failed to create like: %w", err)
				}
				res.Likes++
			}
			if r.Float32() < 0.1 {
				if err := f.CreateBookmark(u, b); err != nil {
					return nil, fmt.Errorf("failed to create bookmark: %w", err)
				}
				res.Bookmarks++
			}
		}
	}

	log.Printf("🎉 Seeding complete: %d comments, %d images, %d likes, %d bookmarks",
		res.Comments, res.Images, res.Likes, res.Bookmarks)
	return res, nil
}

// ClearAll removes every board-domain row. Postgres restarts identities.
func ClearAll(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing data...")
	if db.Dialector.Name() == "postgres" {
		return db.Exec(`TRUNCATE TABLE likes, bookmarks, comments, images, boards, users RESTART IDENTITY CASCADE`).Error
	}
	for _, table := range clearOrder {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}
