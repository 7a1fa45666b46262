package records

import (
	"context"
	"time"

	"github.com/l0p7/innkeeper/internal/store"
)

// StatusColumn is one column of the room status board.
type StatusColumn struct {
	Status store.RoomStatus `json:"status"`
	Rooms  []store.Room     `json:"rooms"`
}

func (s *Service) Rooms(ctx context.Context) ([]store.Room, error) {
	return read(ctx, s, key("rooms", "all"), s.store.ListRooms)
}

func (s *Service) AvailableRooms(ctx context.Context) ([]store.Room, error) {
	return read(ctx, s, key("rooms", string(store.RoomAvailable)), func(ctx context.Context) ([]store.Room, error) {
		return s.store.ListRoomsByStatus(ctx, store.RoomAvailable)
	})
}

func (s *Service) Room(ctx context.Context, id string) (store.Room, error) {
	return read(ctx, s, key("rooms", id), func(ctx context.Context) (store.Room, error) {
		return s.store.GetRoom(ctx, id)
	})
}

// RoomBoard groups every room by status, one column per status even when empty.
func (s *Service) RoomBoard(ctx context.Context) ([]StatusColumn, error) {
	return read(ctx, s, key("rooms", "board"), func(ctx context.Context) ([]StatusColumn, error) {
		rooms, err := s.store.ListRooms(ctx)
		if err != nil {
			return nil, err
		}
		board := make([]StatusColumn, len(store.RoomStatuses))
		index := make(map[store.RoomStatus]int, len(store.RoomStatuses))
		for i, status := range store.RoomStatuses {
			board[i] = StatusColumn{Status: status, Rooms: []store.Room{}}
			index[status] = i
		}
		for _, room := range rooms {
			if i, ok := index[room.Status]; ok {
				board[i].Rooms = append(board[i].Rooms, room)
			}
		}
		return board, nil
	})
}

// Quote prices a stay in the room without booking it.
func (s *Service) Quote(ctx context.Context, roomID string, checkIn, checkOut time.Time) (Quote, error) {
	if err := checkRange(checkIn, checkOut); err != nil {
		return Quote{}, err
	}
	room, err := s.Room(ctx, roomID)
	if err != nil {
		return Quote{}, err
	}
	return quoteFor(room, checkIn, checkOut), nil
}

func (s *Service) CreateRoom(ctx context.Context, room store.Room) (store.Room, error) {
	return write(ctx, s, "create room", func(ctx context.Context) (store.Room, error) {
		return s.store.CreateRoom(ctx, room)
	})
}

func (s *Service) UpdateRoom(ctx context.Context, room store.Room) (store.Room, error) {
	return write(ctx, s, "update room", func(ctx context.Context) (store.Room, error) {
		return s.store.UpdateRoom(ctx, room)
	})
}

func (s *Service) SetRoomStatus(ctx context.Context, id string, status store.RoomStatus) (store.Room, error) {
	if err := status.Validate(); err != nil {
		return store.Room{}, err
	}
	return write(ctx, s, "set room status", func(ctx context.Context) (store.Room, error) {
		return s.store.UpdateRoomStatus(ctx, id, status)
	})
}

func (s *Service) DeleteRoom(ctx context.Context, id string) error {
	_, err := write(ctx, s, "delete room", deleted(func(ctx context.Context) error {
		return s.store.DeleteRoom(ctx, id)
	}))
	return err
}
