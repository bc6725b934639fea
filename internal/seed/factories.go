// Package seed provides helpers to create demo data for the board
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"

	"boardapi/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Categories seeded boards are spread across.
var Categories = []string{"free", "qna", "notice", "review", "market"}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by Seed and tests.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
	seq    int
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

// CreateUser constructs and persists an active user with DefaultPassword.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	f.seq++
	nickname := f.nickname()
	email := fmt.Sprintf("%s.%d@example.com", strings.ToLower(nickname), f.seq)

	user := &models.User{
		Email:        &email,
		Nickname:     nickname,
		ProfileImage: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Status:       models.StatusActive,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = DefaultPassword
	} else {
		hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hash)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Nickname)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// nickname derives a valid nickname (letters and digits, at most 20 runes)
// from a fake first name.
func (f *Factory) nickname() string {
	var sb strings.Builder
	for _, r := range f.faker.FirstName() {
		if unicode.IsLetter(r) {
			sb.WriteRune(r)
		}
	}
	name := sb.String()
	if len([]rune(name)) < 2 {
		name = "user"
	}
	if runes := []rune(name); len(runes) > 14 {
		name = string(runes[:14])
	}
	return fmt.Sprintf("%s%d", name, f.seq)
}

// BuildBoard constructs an active board for user without persisting it.
// CreatedAt is spread over the last MaxDays days.
func (f *Factory) BuildBoard(user *models.User, overrides ...func(*models.Board)) *models.Board {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	back := time.Duration(f.faker.Number(0, maxDays*24*60)) * time.Minute

	board := &models.Board{
		UserID:    user.ID,
		Category:  Categories[f.faker.Number(0, len(Categories)-1)],
		Title:     strings.TrimSuffix(f.faker.Sentence(5), "."),
		Content:   f.faker.Paragraph(1, 3, 8, "\n"),
		Status:    models.StatusActive,
		CreatedAt: time.Now().Add(-back),
	}
	for _, override := range overrides {
		override(board)
	}
	return board
}

// CreateBoard builds and persists a board.
func (f *Factory) CreateBoard(user *models.User, overrides ...func(*models.Board)) (*models.Board, error) {
	board := f.BuildBoard(user, overrides...)
	if err := f.CreateBoardsBatch([]*models.Board{board}); err != nil {
		return nil, err
	}
	return board, nil
}

// CreateBoardsBatch persists multiple boards in a single DB call when possible.
func (f *Factory) CreateBoardsBatch(boards []*models.Board) error {
	if len(boards) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, b := range boards {
			f.nextID++
			b.ID = f.nextID
		}
		log.Printf("[dry-run] CreateBoardsBatch: %d boards (no DB write)", len(boards))
		return nil
	}
	batch := f.opts.BatchSize
	if batch <= 0 {
		batch = 100
	}
	return f.db.CreateInBatches(boards, batch).Error
}

// CreateComment persists a comment by user on board.
func (f *Factory) CreateComment(user *models.User, board *models.Board, overrides ...func(*models.Comment)) (*models.Comment, error) {
	comment := &models.Comment{
		BoardID: board.ID,
		UserID:  user.ID,
		Content: f.faker.Sentence(8),
		Status:  models.StatusActive,
	}
	for _, override := range overrides {
		override(comment)
	}
	if f.opts.DryRun {
		f.nextID++
		comment.ID = f.nextID
		return comment, nil
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateImage records an externally hosted picture on board.
func (f *Factory) CreateImage(board *models.Board) (*models.Image, error) {
	seed := f.faker.UUID()
	image := &models.Image{
		BoardID:      board.ID,
		OriginalName: seed + ".jpg",
		ObjectKey:    "seed/" + seed,
		URL:          fmt.Sprintf("https://picsum.photos/seed/%s/800/600", seed),
		MimeType:     "image/jpeg",
		Width:        800,
		Height:       600,
		Status:       models.StatusActive,
	}
	if f.opts.DryRun {
		f.nextID++
		image.ID = f.nextID
		return image, nil
	}
	if err := f.db.Create(image).Error; err != nil {
		return nil, err
	}
	return image, nil
}

// CreateLike persists a like from user on board.
func (f *Factory) CreateLike(user *models.User, board *models.Board) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.Like{UserID: user.ID, BoardID: board.ID}).Error
}

// CreateBookmark persists an active bookmark from user on board.
func (f *Factory) CreateBookmark(user *models.User, board *models.Board) error {
	if f.opts.DryRun {
		return nil
	}
	return f.db.Create(&models.Bookmark{
		UserID:  user.ID,
		BoardID: board.ID,
		Status:  models.StatusActive,
	}).Error
}
