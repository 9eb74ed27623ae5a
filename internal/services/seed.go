// internal/services/seed.go
package services

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/javajoker/beatmarket/internal/models"
)

type seedUser struct {
	user     models.User
	password string
}

func mustDate(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

var demoUsers = []seedUser{
	{
		user: models.User{
			ID:        "admin-1",
			Email:     "admin@beatmarket.ru",
			Role:      models.RoleAdmin,
			Name:      "Администратор",
			Bio:       "Администратор платформы BeatMarket",
			WalletRub: decimal.NewFromInt(100000),
			WalletUsd: decimal.NewFromInt(1000),
			CreatedAt: mustDate("2024-01-01T00:00:00Z"),
		},
		password: "admin123",
	},
	{
		user: models.User{
			ID:        "seller-1",
			Email:     "producer@beatmarket.ru",
			Role:      models.RoleSeller,
			Name:      "DJ Producer",
			Bio:       "Профессиональный битмейкер с 5-летним опытом. Создаю биты в стилях Trap, Hip-Hop, R&B.",
			WalletRub: decimal.NewFromInt(50000),
			WalletUsd: decimal.NewFromInt(500),
			CreatedAt: mustDate("2024-01-15T00:00:00Z"),
		},
		password: "seller123",
	},
	{
		user: models.User{
			ID:        "seller-2",
			Email:     "soundwave@beatmarket.ru",
			Role:      models.RoleSeller,
			Name:      "SoundWave",
			Bio:       "Электронная музыка и эксперименты со звуком.",
			WalletRub: decimal.NewFromInt(25000),
			WalletUsd: decimal.NewFromInt(250),
			CreatedAt: mustDate("2024-02-01T00:00:00Z"),
		},
		password: "seller123",
	},
	{
		user: models.User{
			ID:        "buyer-1",
			Email:     "artist@beatmarket.ru",
			Role:      models.RoleBuyer,
			Name:      "Young Artist",
			Bio:       "Начинающий рэпер в поисках уникального звучания.",
			WalletRub: decimal.NewFromInt(10000),
			WalletUsd: decimal.NewFromInt(150),
			CreatedAt: mustDate("2024-02-15T00:00:00Z"),
		},
		password: "buyer123",
	},
}

func seedUsers(cost int) ([]models.User, error) {
	users := make([]models.User, 0, len(demoUsers))
	for _, seed := range demoUsers {
		user := seed.user
		if err := user.SetPassword(seed.password, cost); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func seedNews() []models.NewsItem {
	return []models.NewsItem{
		{
			ID:          "news-1",
			Title:       "Новая эра битмейкинга: тренды 2024",
			Description: "Обзор главных тенденций в мире продакшена. AI-инструменты, новые жанры и изменения в индустрии.",
			Text:        "Обзор главных тенденций в мире продакшена. AI-инструменты, новые жанры и изменения в индустрии. Полная версия статьи доступна внутри карточки.",
			ImageURL:    "https://images.unsplash.com/photo-1598488035139-bdbb2231ce04?w=800&h=400&fit=crop",
			Category:    "Тренды",
			Author:      "Редакция BeatMarket",
			CreatedAt:   mustDate("2024-03-28T00:00:00Z"),
		},
		{
			ID:          "news-2",
			Title:       "Топ-10 продюсеров месяца",
			Description: "Рейтинг самых продаваемых битмейкеров на платформе. Узнайте, кто создаёт хиты!",
			Text:        "Рейтинг самых продаваемых битмейкеров на платформе. Узнайте, кто создаёт хиты! Полные детали рейтинга доступны при раскрытии карточки.",
			ImageURL:    "https://images.unsplash.com/photo-1571330735066-03aaa9429d89?w=800&h=400&fit=crop",
			Category:    "Рейтинг",
			Author:      "Редакция BeatMarket",
			CreatedAt:   mustDate("2024-03-25T00:00:00Z"),
		},
		{
			ID:          "news-3",
			Title:       "Как продать свой первый бит",
			Description: "Полное руководство для начинающих продюсеров. От создания до продажи.",
			Text:        "Полное руководство для начинающих продюсеров. От создания до продажи. Внутри карточки более детальные шаги и советы.",
			ImageURL:    "https://images.unsplash.com/photo-1514320291840-2e0a9bf2a9ae?w=800&h=400&fit=crop",
			Category:    "Гайд",
			Author:      "DJ Producer",
			CreatedAt:   mustDate("2024-03-20T00:00:00Z"),
		},
		{
			ID:          "news-4",
			Title:       "Обновление платформы: новые функции",
			Description: "Рейтинги, избранное и улучшенный поиск теперь доступны всем пользователям.",
			ImageURL:    "https://images.unsplash.com/photo-1470225620780-dba8ba36b745?w=800&h=400&fit=crop",
			Category:    "Новости",
			Author:      "Редакция BeatMarket",
			CreatedAt:   mustDate("2024-03-15T00:00:00Z"),
		},
	}
}
