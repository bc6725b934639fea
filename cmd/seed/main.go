// Command seed fills a development database with fake boards.
package main

import (
	"flag"
	"log"

	"boardapi/internal/config"
	"boardapi/internal/database"
	"boardapi/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numBoards := flag.Int("boards", 200, "Number of boards to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fast := flag.Bool("fast", false, "Skip bcrypt (seeded accounts cannot sign in)")
	dryRun := flag.Bool("dry-run", false, "Build entities without writing them")
	randSeed := flag.Int64("rand-seed", 0, "Seed for reproducible data (0 = random)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")
	log.Printf("Target: %d users, %d boards, clean=%v\n", *numUsers, *numBoards, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("❌ Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumBoards:   *numBoards,
		ShouldClean: *shouldClean,
		SkipBcrypt:  *fast,
		DryRun:      *dryRun,
		RandSeed:    *randSeed,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! %d users, %d boards.", res.Users, res.Boards)
	if !*fast {
		log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
	}
}
