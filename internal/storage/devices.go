package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

const deviceColumns = `id, name, is_online, is_on, type, location, temperature, battery_level`

func scanDevice(row pgx.Row) (*Device, error) {
	var d Device
	err := row.Scan(
		&d.ID, &d.Name, &d.IsOnline, &d.IsOn,
		&d.Type, &d.Location, &d.Temperature, &d.BatteryLevel,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan device: %w", err)
	}
	return &d, nil
}

// ListDevices returns every device row in store order.
func (p *PostgresClient) ListDevices(ctx context.Context) ([]*Device, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT `+deviceColumns+` FROM devices
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query devices: %w", err)
	}
	defer rows.Close()

	devices := make([]*Device, 0)
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (p *PostgresClient) GetDeviceByID(ctx context.Context, id int64) (*Device, error) {
	row := p.pool.QueryRow(ctx, `
		SELECT `+deviceColumns+` FROM devices WHERE id = $1
	`, id)
	return scanDevice(row)
}

// InsertDevice inserts a device and returns the row with its assigned id.
func (p *PostgresClient) InsertDevice(ctx context.Context, d *Device) (*Device, error) {
	row := p.pool.QueryRow(ctx, `
		INSERT INTO devices (name, is_online, is_on, type, location, temperature, battery_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+deviceColumns+`
	`, d.Name, d.IsOnline, d.IsOn, d.Type, d.Location, d.Temperature, d.BatteryLevel)

	created, err := scanDevice(row)
	if err != nil {
		return nil, fmt.Errorf("failed to insert device: %w", err)
	}
	return created, nil
}

// UpdateDevice replaces every field except id and is_on on the matching row.
func (p *PostgresClient) UpdateDevice(ctx context.Context, id int64, d *Device) error {
	result, err := p.pool.Exec(ctx, `
		UPDATE devices
		SET name = $1, type = $2, location = $3, temperature = $4,
		    battery_level = $5, is_online = $6
		WHERE id = $7
	`, d.Name, d.Type, d.Location, d.Temperature, d.BatteryLevel, d.IsOnline, id)
	if err != nil {
		return fmt.Errorf("failed to update device: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresClient) UpdateDeviceOnline(ctx context.Context, id int64, isOnline bool) error {
	result, err := p.pool.Exec(ctx, `
		UPDATE devices SET is_online = $1 WHERE id = $2
	`, isOnline, id)
	if err != nil {
		return fmt.Errorf("failed to update device status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresClient) UpdateDevicePower(ctx context.Context, id int64, isOn bool) error {
	result, err := p.pool.Exec(ctx, `
		UPDATE devices SET is_on = $1 WHERE id = $2
	`, isOn, id)
	if err != nil {
		return fmt.Errorf("failed to update device power: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDevice removes a device. Hard delete, no tombstone.
func (p *PostgresClient) DeleteDevice(ctx context.Context, id int64) error {
	result, err := p.pool.Exec(ctx, `
		DELETE FROM devices WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("failed to delete device: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountDevices is used by the metrics gauges.
func (p *PostgresClient) CountDevices(ctx context.Context) (int64, error) {
	var count int64
	if err := p.pool.QueryRow(ctx, `SELECT COUNT(*) FROM devices`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count devices: %w", err)
	}
	return count, nil
}
