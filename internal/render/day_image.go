// Package render draws schedule views as PNG images, in the spirit of a
// printable day sheet: one row per declared slot, colored by occupancy.
package render

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"

	"github.com/campushub/portal/internal/model"
)

const (
	imageWidth   = 640
	headerHeight = 70
	rowHeight    = 44
	rowPaddingX  = 24
	rowGap       = 8
	footerHeight = 30
)

var (
	bgColor        = color.RGBA{245, 246, 248, 255}
	titleColor     = color.RGBA{40, 44, 48, 255}
	subtitleColor  = color.RGBA{110, 115, 120, 255}
	freeSlotColor  = color.RGBA{133, 193, 85, 255}
	bookedColor    = color.RGBA{255, 182, 193, 255}
	slotTextColor  = color.RGBA{20, 24, 28, 255}
	emptyTextColor = color.RGBA{150, 155, 160, 255}
)

// DaySchedule renders an advisor's declared slots for one date. Occupied
// times are looked up in the occupied set.
func DaySchedule(advisorName, date string, slots []*model.AvailabilitySlot, occupied map[string]bool) ([]byte, error) {
	height := headerHeight + footerHeight + rowHeight
	if len(slots) > 0 {
		height = headerHeight + footerHeight + len(slots)*(rowHeight+rowGap)
	}

	dc := gg.NewContext(imageWidth, height)
	dc.SetFontFace(basicfont.Face7x13)

	dc.SetColor(bgColor)
	dc.Clear()

	dc.SetColor(titleColor)
	dc.DrawString(fmt.Sprintf("Schedule for %s", advisorName), rowPaddingX, 30)
	dc.SetColor(subtitleColor)
	dc.DrawString(date, rowPaddingX, 50)

	if len(slots) == 0 {
		dc.SetColor(emptyTextColor)
		dc.DrawString("No availability declared for this date.", rowPaddingX, float64(headerHeight+24))
		return encode(dc)
	}

	y := float64(headerHeight)
	for _, slot := range slots {
		fill := freeSlotColor
		label := slot.Time + "  open"
		if occupied[slot.Time] {
			fill = bookedColor
			label = slot.Time + "  booked"
		}

		dc.SetColor(fill)
		dc.DrawRoundedRectangle(rowPaddingX, y, imageWidth-2*rowPaddingX, rowHeight, 6)
		dc.Fill()

		dc.SetColor(slotTextColor)
		dc.DrawString(label, rowPaddingX+16, y+rowHeight/2+4)

		y += rowHeight + rowGap
	}

	return encode(dc)
}

func encode(dc *gg.Context) ([]byte, error) {
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
