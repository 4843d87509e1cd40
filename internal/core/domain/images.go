package domain

import (
	"errors"
	"fmt"
	"strings"
)

var ErrImageIndex = errors.New("image index out of range")

// ImageSlot is either an image already stored by the API (ID set) or a file
// waiting to be uploaded (Upload holds its form file name).
type ImageSlot struct {
	ProductImage
	Upload string
}

// Key identifies a slot in form fields: "id:<n>" for stored images and
// "new:<file name>" for pending uploads.
func (s ImageSlot) Key() string {
	if s.Upload != "" {
		return "new:" + s.Upload
	}
	return fmt.Sprintf("id:%d", s.ID)
}

// ImageSet keeps the images of a product form with exactly one primary image
// whenever it is non-empty.
type ImageSet struct {
	slots   []ImageSlot
	deleted []int64
}

func NewImageSet(existing []ProductImage) *ImageSet {
	s := &ImageSet{slots: make([]ImageSlot, 0, len(existing))}
	for _, img := range existing {
		s.slots = append(s.slots, ImageSlot{ProductImage: img})
	}
	s.normalize()
	return s
}

// Add appends a pending upload. The first image of an empty set is primary.
func (s *ImageSet) Add(upload string) {
	s.slots = append(s.slots, ImageSlot{
		ProductImage: ProductImage{IsPrimary: len(s.slots) == 0},
		Upload:       upload,
	})
}

// Remove drops the slot at i. Stored images are remembered for deletion and
// a removed primary hands over to the first remaining image.
func (s *ImageSet) Remove(i int) error {
	if i < 0 || i >= len(s.slots) {
		return ErrImageIndex
	}
	removed := s.slots[i]
	s.slots = append(s.slots[:i], s.slots[i+1:]...)
	if removed.Upload == "" && removed.ID != 0 {
		s.deleted = append(s.deleted, removed.ID)
	}
	if removed.IsPrimary && len(s.slots) > 0 {
		s.slots[0].IsPrimary = true
	}
	return nil
}

// RemoveKey removes the slot with the given Key, if present.
func (s *ImageSet) RemoveKey(key string) {
	if i := s.Index(key); i >= 0 {
		_ = s.Remove(i)
	}
}

func (s *ImageSet) SetPrimary(i int) error {
	if i < 0 || i >= len(s.slots) {
		return ErrImageIndex
	}
	for j := range s.slots {
		s.slots[j].IsPrimary = j == i
	}
	return nil
}

// Index returns the position of the slot with the given key or -1.
func (s *ImageSet) Index(key string) int {
	key = strings.TrimSpace(key)
	for i, slot := range s.slots {
		if slot.Key() == key {
			return i
		}
	}
	return -1
}

func (s *ImageSet) Primary() (ImageSlot, bool) {
	for _, slot := range s.slots {
		if slot.IsPrimary {
			return slot, true
		}
	}
	return ImageSlot{}, false
}

func (s *ImageSet) Slots() []ImageSlot { return append([]ImageSlot(nil), s.slots...) }
func (s *ImageSet) Deleted() []int64   { return append([]int64(nil), s.deleted...) }
func (s *ImageSet) Len() int           { return len(s.slots) }

// Uploads lists the pending upload names in slot order.
func (s *ImageSet) Uploads() []string {
	var out []string
	for _, slot := range s.slots {
		if slot.Upload != "" {
			out = append(out, slot.Upload)
		}
	}
	return out
}

func (s *ImageSet) normalize() {
	if len(s.slots) == 0 {
		return
	}
	primary := -1
	for i, slot := range s.slots {
		if slot.IsPrimary {
			primary = i
			break
		}
	}
	if primary < 0 {
		primary = 0
	}
	for i := range s.slots {
		s.slots[i].IsPrimary = i == primary
	}
}
