package bot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"poputka/internal/models"

	"github.com/xuri/excelize/v2"
)

// exportToExcel создает Excel файл с поездками и бронированиями за период
func (b *Bot) exportToExcel(ctx context.Context, startDate, endDate time.Time) (string, error) {
	// Создаем папку для экспорта, если не существует
	if err := os.MkdirAll(b.config.Exports.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	trips, err := b.db.GetTripsByDateRange(ctx, startDate, endDate)
	if err != nil {
		return "", fmt.Errorf("error getting trips: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := b.writeTripsSheet(f, trips, startDate, endDate); err != nil {
		return "", err
	}
	if err := b.writeBookingsSheet(ctx, f, trips); err != nil {
		return "", err
	}

	// Удаляем стандартный лист
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("export_%s_to_%s.xlsx",
		startDate.Format("2006-01-02"), endDate.Format("2006-01-02"))
	fullPath := filepath.Join(b.config.Exports.Path, fileName)

	if err := f.SaveAs(fullPath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	return fullPath, nil
}

func (b *Bot) writeTripsSheet(f *excelize.File, trips []*models.Trip, startDate, endDate time.Time) error {
	sheetName := "Поездки"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("Период: %s - %s",
		startDate.Format("02.01.2006"), endDate.Format("02.01.2006")))
	_ = f.MergeCell(sheetName, "A1", "I1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)

	headers := []string{"ID", "Маршрут", "Дата", "Время", "Водитель", "Мест всего", "Свободно", "Цена", "Статус"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 2)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, "A2", "I2", headerStyle)

	for i, trip := range trips {
		row := i + 3
		values := []interface{}{
			trip.ID,
			routeLabel(trip.StartCity, trip.FinishCity),
			trip.DepartureDate.Format("02.01.2006"),
			trip.DepartureTime,
			trip.DriverID,
			trip.TotalSeats,
			trip.AvailableSeats,
			trip.PricePerSeat,
			tripStatusText(trip.Status),
		}
		for j, v := range values {
			cell, _ := excelize.CoordinatesToCellName(j+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 8)
	_ = f.SetColWidth(sheetName, "B", "B", 30)
	_ = f.SetColWidth(sheetName, "C", "I", 14)

	return nil
}

func (b *Bot) writeBookingsSheet(ctx context.Context, f *excelize.File, trips []*models.Trip) error {
	sheetName := "Бронирования"
	if _, err := f.NewSheet(sheetName); err != nil {
		return fmt.Errorf("error creating sheet: %v", err)
	}

	headers := []string{"ID", "Поездка", "Маршрут", "Пассажир", "Мест", "Сумма", "Статус", "Создана"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	_ = f.SetCellStyle(sheetName, "A1", "H1", headerStyle)

	row := 2
	for _, trip := range trips {
		bookings, err := b.bookingService.GetTripBookings(ctx, trip.ID)
		if err != nil {
			return fmt.Errorf("error getting bookings for trip %d: %v", trip.ID, err)
		}

		for _, booking := range bookings {
			values := []interface{}{
				booking.ID,
				trip.ID,
				routeLabel(trip.StartCity, trip.FinishCity),
				booking.PassengerID,
				booking.BookedSeats,
				booking.PriceAgreed * float64(booking.BookedSeats),
				bookingStatusText(booking.Status),
				booking.BookedAt.Format("02.01.2006 15:04"),
			}
			for j, v := range values {
				cell, _ := excelize.CoordinatesToCellName(j+1, row)
				_ = f.SetCellValue(sheetName, cell, v)
			}
			row++
		}
	}

	_ = f.SetColWidth(sheetName, "A", "H", 16)
	_ = f.SetColWidth(sheetName, "C", "C", 30)

	return nil
}
