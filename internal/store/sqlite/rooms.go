package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/l0p7/innkeeper/internal/store"
)

const roomColumns = `id, room_number, room_type, status, floor_number, price_per_night,
       capacity, amenities, description, created_at, updated_at`

func scanRoom(row rowScanner) (store.Room, error) {
	var (
		room      store.Room
		amenities string
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(
		&room.ID,
		&room.RoomNumber,
		&room.RoomType,
		&room.Status,
		&room.FloorNumber,
		&room.PricePerNight,
		&room.Capacity,
		&amenities,
		&room.Description,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return store.Room{}, err
	}
	room.Amenities = []string{}
	if amenities != "" {
		if err := json.Unmarshal([]byte(amenities), &room.Amenities); err != nil {
			return store.Room{}, fmt.Errorf("decode amenities: %w", err)
		}
	}
	room.CreatedAt = fromMillis(createdAt)
	room.UpdatedAt = fromMillis(updatedAt)
	return room, nil
}

// ListRooms returns every room ordered by room number.
func (s *Store) ListRooms(ctx context.Context) ([]store.Room, error) {
	return queryAll(ctx, s, "list rooms", scanRoom,
		`SELECT `+roomColumns+` FROM rooms ORDER BY room_number`)
}

// ListRoomsByStatus returns rooms in the given status ordered by room number.
func (s *Store) ListRoomsByStatus(ctx context.Context, status store.RoomStatus) ([]store.Room, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	return queryAll(ctx, s, "list rooms by status", scanRoom,
		`SELECT `+roomColumns+` FROM rooms WHERE status = ? ORDER BY room_number`, string(status))
}

// GetRoom returns one room by id.
func (s *Store) GetRoom(ctx context.Context, id string) (store.Room, error) {
	if err := ctx.Err(); err != nil {
		return store.Room{}, err
	}
	if err := requireID(id); err != nil {
		return store.Room{}, err
	}
	room, err := scanRoom(s.sqlDB.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err != nil {
		return store.Room{}, translate("get room", err)
	}
	return room, nil
}

// CreateRoom inserts room with a fresh id.
func (s *Store) CreateRoom(ctx context.Context, room store.Room) (store.Room, error) {
	if err := ctx.Err(); err != nil {
		return store.Room{}, err
	}
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if room.Status == "" {
		room.Status = store.RoomAvailable
	}
	if err := room.Validate(); err != nil {
		return store.Room{}, err
	}
	if room.Amenities == nil {
		room.Amenities = []string{}
	}
	amenities, err := encodeJSON(room.Amenities)
	if err != nil {
		return store.Room{}, fmt.Errorf("sqlite: encode amenities: %w", err)
	}
	room.ID = s.newID()
	room.CreatedAt = s.now()
	room.UpdatedAt = room.CreatedAt

	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO rooms (`+roomColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		room.ID,
		room.RoomNumber,
		string(room.RoomType),
		string(room.Status),
		room.FloorNumber,
		room.PricePerNight,
		room.Capacity,
		amenities,
		room.Description,
		toMillis(room.CreatedAt),
		toMillis(room.UpdatedAt),
	)
	if err != nil {
		return store.Room{}, translate("create room", err)
	}
	return s.GetRoom(ctx, room.ID)
}

// UpdateRoom replaces every mutable field of the room with room.ID.
func (s *Store) UpdateRoom(ctx context.Context, room store.Room) (store.Room, error) {
	if err := ctx.Err(); err != nil {
		return store.Room{}, err
	}
	if err := requireID(room.ID); err != nil {
		return store.Room{}, err
	}
	room.RoomNumber = strings.TrimSpace(room.RoomNumber)
	if err := room.Validate(); err != nil {
		return store.Room{}, err
	}
	if room.Amenities == nil {
		room.Amenities = []string{}
	}
	amenities, err := encodeJSON(room.Amenities)
	if err != nil {
		return store.Room{}, fmt.Errorf("sqlite: encode amenities: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE rooms
		    SET room_number = ?, room_type = ?, status = ?, floor_number = ?,
		        price_per_night = ?, capacity = ?, amenities = ?, description = ?,
		        updated_at = ?
		  WHERE id = ?`,
		room.RoomNumber,
		string(room.RoomType),
		string(room.Status),
		room.FloorNumber,
		room.PricePerNight,
		room.Capacity,
		amenities,
		room.Description,
		toMillis(s.now()),
		room.ID,
	)
	if err != nil {
		return store.Room{}, translate("update room", err)
	}
	if err := expectOne("update room", res); err != nil {
		return store.Room{}, err
	}
	return s.GetRoom(ctx, room.ID)
}

// UpdateRoomStatus changes only the status of the room.
func (s *Store) UpdateRoomStatus(ctx context.Context, id string, status store.RoomStatus) (store.Room, error) {
	if err := ctx.Err(); err != nil {
		return store.Room{}, err
	}
	if err := requireID(id); err != nil {
		return store.Room{}, err
	}
	if err := status.Validate(); err != nil {
		return store.Room{}, err
	}
	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE rooms SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), toMillis(s.now()), id,
	)
	if err != nil {
		return store.Room{}, translate("update room status", err)
	}
	if err := expectOne("update room status", res); err != nil {
		return store.Room{}, err
	}
	return s.GetRoom(ctx, id)
}

// DeleteRoom removes the room. Rooms referenced by bookings cannot be deleted.
func (s *Store) DeleteRoom(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := requireID(id); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return translate("delete room", err)
	}
	return expectOne("delete room", res)
}
