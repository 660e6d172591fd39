package api

import (
	"gorm.io/gorm"

	"github.com/vietanh2810/eventbooking-api/internal/repository"
	"github.com/vietanh2810/eventbooking-api/internal/repository/dao"
	"github.com/vietanh2810/eventbooking-api/internal/repository/memory"
	"github.com/vietanh2810/eventbooking-api/internal/service"
)

type UserStore interface {
	service.AuthUserRepository
	service.UserRepository
}

type LedgerStore interface {
	service.BookingStore
	service.TicketLister
	service.LedgerTotals
}

// Repositories is the storage a Server runs on.
type Repositories struct {
	Users  UserStore
	Events service.EventRepository
	Ledger LedgerStore
}

func NewSQLRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:  repository.NewUserRepository(dao.NewUserDAO(db)),
		Events: repository.NewEventRepository(dao.NewEventDAO(db)),
		Ledger: repository.NewLedgerRepository(dao.NewTicketDAO(db)),
	}
}

func NewMemoryRepositories(s *memory.Store) Repositories {
	return Repositories{
		Users:  s.Users(),
		Events: s.Events(),
		Ledger: s.Ledger(),
	}
}

var (
	_ LedgerStore = (*repository.LedgerRepository)(nil)
	_ LedgerStore = (*memory.Ledger)(nil)
	_ UserStore   = (*memory.Users)(nil)
)
