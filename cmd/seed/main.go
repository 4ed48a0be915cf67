// Package main seeds a development SQLite store with sample content and
// app users.
//
// Usage:
//
//	SQLITE_PATH=./data/arcana.db go run ./cmd/seed
//	SQLITE_PATH=./data/arcana.db go run ./cmd/seed --users 40
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"strconv"
	"time"

	"github.com/arcanaoficial/arcana-server/internal/domain"
	"github.com/arcanaoficial/arcana-server/internal/id"
	"github.com/arcanaoficial/arcana-server/internal/store/sqlite"
)

var userCount = flag.Int("users", 25, "Number of app users to create")

var majorArcana = []string{
	"El Loco", "El Mago", "La Sacerdotisa", "La Emperatriz", "El Emperador",
	"El Hierofante", "Los Enamorados", "El Carro", "La Fuerza", "El Ermitaño",
	"La Rueda de la Fortuna", "La Justicia", "El Colgado", "La Muerte",
	"La Templanza", "El Diablo", "La Torre", "La Estrella", "La Luna",
	"El Sol", "El Juicio", "El Mundo",
}

var runes = []string{"Fehu", "Uruz", "Thurisaz", "Ansuz", "Raidho", "Kenaz", "Gebo", "Wunjo"}

var (
	firstNames = []string{"Luna", "Sol", "Alba", "Iris", "Marina", "Celeste", "Dante", "Orión", "Gael", "Nahuel"}
	lastNames  = []string{"Rivas", "Quiroga", "Ledesma", "Sosa", "Ferreyra", "Acosta", "Benítez", ""}
)

func main() {
	flag.Parse()

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "./data/arcana.db"
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, slog.New(slog.DiscardHandler))
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	seedTarot(ctx, s)
	seedRunes(ctx, s)
	seedArticles(ctx, s)
	seedUsers(ctx, s, *userCount)

	fmt.Println("Done.")
}

func seedTarot(ctx context.Context, s *sqlite.Store) {
	for i, name := range majorArcana {
		data := domain.NewRecord()
		data.Set("numero", domain.NewNumber(float64(i)))
		data.Set("nombre", domain.NewString(name))
		data.Set("invertida", domain.NewBool(i%3 == 0))

		order := i
		if _, err := s.CreateContentLibrary(ctx, domain.ContentLibraryInput{
			Data:     data,
			Section:  "tarot",
			Category: "arcanos-mayores",
			Order:    &order,
			Tag:      []string{"tarot", "mayores"},
		}); err != nil {
			log.Fatalf("Failed to create tarot card %q: %v", name, err)
		}
	}
	fmt.Printf("Created %d tarot cards\n", len(majorArcana))
}

func seedRunes(ctx context.Context, s *sqlite.Store) {
	for _, name := range runes {
		data := domain.NewRecord()
		data.Set("nombre", domain.NewString(name))
		data.Set("aett", domain.NewString("Freyr"))

		if _, err := s.CreateContentLibrary(ctx, domain.ContentLibraryInput{
			Data:     data,
			Section:  "runas",
			Category: "futhark",
		}); err != nil {
			log.Fatalf("Failed to create rune %q: %v", name, err)
		}
	}
	fmt.Printf("Created %d runes\n", len(runes))
}

func seedArticles(ctx context.Context, s *sqlite.Store) {
	articles := []struct {
		category, html string
	}{
		{"rituales", "<h2>Ritual de luna llena</h2><p>Prepará un vaso de agua y <strong>tres velas blancas</strong>.</p>"},
		{"rituales", "<h2>Limpieza energética</h2><ul><li>Sal gruesa</li><li>Romero</li></ul>"},
		{"guias", "<h2>Cómo leer una tirada de tres cartas</h2><p>Pasado, presente y futuro.</p>"},
	}
	for _, a := range articles {
		if _, err := s.CreateRichContent(ctx, domain.RichContentInput{
			HTML:     a.html,
			Section:  "blog",
			Category: a.category,
			Tag:      []string{"blog"},
		}); err != nil {
			log.Fatalf("Failed to create article: %v", err)
		}
	}
	fmt.Printf("Created %d articles\n", len(articles))
}

func seedUsers(ctx context.Context, s *sqlite.Store, n int) {
	tiers := []string{"basic", "premium"}
	now := time.Now().UTC()

	subscribed := 0
	for i := range n {
		userID := "user-" + strconv.Itoa(i+1)
		profileID, err := id.Generate(id.PrefixProfile)
		if err != nil {
			log.Fatalf("Failed to generate id: %v", err)
		}

		profile := domain.Profile{
			ID:        profileID,
			UserID:    userID,
			FirstName: firstNames[rand.IntN(len(firstNames))],
			LastName:  lastNames[rand.IntN(len(lastNames))],
			Arcana:    rand.IntN(4) == 0,
			CreatedAt: now.Add(-time.Duration(rand.IntN(90*24)) * time.Hour),
		}
		if err := s.SaveProfile(ctx, profile); err != nil {
			log.Fatalf("Failed to create profile: %v", err)
		}

		if rand.IntN(3) == 0 {
			continue
		}
		status := domain.SubscriptionActive
		if rand.IntN(5) == 0 {
			status = "canceled"
		}
		expires := now.AddDate(0, 1, 0)
		if err := s.SaveSubscription(ctx, domain.Subscription{
			UserID:    userID,
			Tier:      tiers[rand.IntN(len(tiers))],
			Status:    status,
			Platform:  "stripe",
			ExpiresAt: &expires,
		}); err != nil {
			log.Fatalf("Failed to create subscription: %v", err)
		}
		subscribed++
	}
	fmt.Printf("Created %d users, %d with a subscription\n", n, subscribed)
}
