package model

import (
	"regexp"
	"strconv"
	"strings"
)

type FeeCategory string

const (
	FeeCategoryGeneral  FeeCategory = "general"
	FeeCategoryReserved FeeCategory = "reserved"
)

// FeeBand — статический справочник: диапазон классов × категория → вилка
// годовой платы
type FeeBand struct {
	ID           int64       `json:"id"`
	ClassMin     int         `json:"class_min"`
	ClassMax     int         `json:"class_max"`
	Category     FeeCategory `json:"category"`
	AnnualFeeMin float64     `json:"annual_fee_min"`
	AnnualFeeMax float64     `json:"annual_fee_max"`
}

// ClassRange возвращает диапазон классов в виде строки ("9-10")
func (b *FeeBand) ClassRange() string {
	return strconv.Itoa(b.ClassMin) + "-" + strconv.Itoa(b.ClassMax)
}

// Порядок важен: сначала двузначные, чтобы "12th" не распознался как "1".
// Суффиксы st/nd/rd/th необязательны.
var classPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(1[0-2])\s*(?:st|nd|rd|th)?\b`),
	regexp.MustCompile(`\b([1-9])\s*(?:st|nd|rd|th)?\b`),
}

// ParseClass извлекает номер класса из свободного описания курса
// ("Class 10", "11th Science", "5"). Допустимы классы 1-12.
func ParseClass(course string) (int, bool) {
	course = strings.ToLower(strings.TrimSpace(course))
	if course == "" {
		return 0, false
	}
	for _, re := range classPatterns {
		m := re.FindStringSubmatch(course)
		if m == nil {
			continue
		}
		class, err := strconv.Atoi(m[1])
		if err != nil || class < 1 || class > 12 {
			continue
		}
		return class, true
	}
	return 0, false
}

// NormalizeCategory приводит категорию абитуриента к тарифной.
// Резервные категории (sc/st/obc/sbc) попадают в reserved, всё остальное,
// включая пустое значение, считается general.
func NormalizeCategory(category string) FeeCategory {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "sc", "st", "obc", "sbc":
		return FeeCategoryReserved
	default:
		return FeeCategoryGeneral
	}
}

// BandForClass возвращает границы диапазона, в который попадает класс:
// 1-8, 9-10 или 11-12
func BandForClass(class int) (int, int, bool) {
	switch {
	case class >= 1 && class <= 8:
		return 1, 8, true
	case class == 9 || class == 10:
		return 9, 10, true
	case class == 11 || class == 12:
		return 11, 12, true
	default:
		return 0, 0, false
	}
}
