package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"lms/backend/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeEarnings(t *testing.T) {
	course := models.Course{
		Price:            dec("100"),
		Discount:         dec("20"),
		EnrolledStudents: []string{"s1", "s2", "s3"},
	}
	got := ComputeEarnings(course)
	assert.True(t, dec("240").Equal(got), "got %s", got)

	course.EnrolledStudents = nil
	assert.True(t, ComputeEarnings(course).IsZero())
}

func TestPriceAfterDiscountIsExact(t *testing.T) {
	course := models.Course{Price: dec("49.99"), Discount: dec("15")}
	assert.True(t, dec("42.4915").Equal(PriceAfterDiscount(course)))
	assert.True(t, dec("42.49").Equal(PurchaseAmount(course)))
}

func TestPurchaseAmountRoundsHalfUp(t *testing.T) {
	course := models.Course{Price: dec("10.05"), Discount: dec("50")}
	assert.Equal(t, "5.03", PurchaseAmount(course).StringFixed(2))

	course = models.Course{Price: dec("0"), Discount: dec("0")}
	assert.True(t, PurchaseAmount(course).IsZero())
}

func TestComputeDashboard(t *testing.T) {
	now := time.Now()
	courses := []models.Course{{ID: "c1", Title: "Go"}, {ID: "c2", Title: "SQL"}}
	purchases := []EnrollmentRecord{
		{Amount: dec("50"), CourseTitle: "Go", Student: StudentRef{ID: "s1", Name: "Ann"}, PurchasedAt: now},
		{Amount: dec("30"), CourseTitle: "SQL", Student: StudentRef{ID: "s1", Name: "Ann"}, PurchasedAt: now},
		{Amount: dec("20"), CourseTitle: "Go", Student: StudentRef{ID: "s2", Name: "Bob"}, PurchasedAt: now},
	}

	summary := ComputeDashboard(courses, purchases)

	assert.Equal(t, 2, summary.TotalCourses)
	assert.True(t, dec("100").Equal(summary.TotalEarnings))
	assert.Equal(t, 2, summary.UniqueStudentsCount)
	assert.Len(t, summary.EnrolledStudentsData, 3)
	assert.Equal(t, "SQL", summary.EnrolledStudentsData[1].CourseTitle)
	assert.Equal(t, "Bob", summary.EnrolledStudentsData[2].Student.Name)
}

func TestComputeDashboardEmpty(t *testing.T) {
	summary := ComputeDashboard(nil, nil)

	assert.Equal(t, 0, summary.TotalCourses)
	assert.True(t, summary.TotalEarnings.IsZero())
	assert.Empty(t, summary.EnrolledStudentsData)
	assert.Equal(t, 0, summary.UniqueStudentsCount)

	perf := CoursePerformance(summary)
	assert.True(t, perf.AvgEnrollmentsPerCourse.IsZero())
	assert.True(t, perf.AvgEarningPerEnrollment.IsZero())
}

func TestComputeDashboardSumsWithoutDrift(t *testing.T) {
	var purchases []EnrollmentRecord
	for i := 0; i < 10; i++ {
		purchases = append(purchases, EnrollmentRecord{Amount: dec("0.10"), Student: StudentRef{ID: "s"}})
	}
	summary := ComputeDashboard(nil, purchases)
	assert.True(t, dec("1").Equal(summary.TotalEarnings))
}

func TestCoursePerformance(t *testing.T) {
	summary := DashboardSummary{
		TotalCourses:  2,
		TotalEarnings: dec("90"),
		EnrolledStudentsData: []EnrollmentEntry{
			{Student: StudentRef{ID: "a"}}, {Student: StudentRef{ID: "b"}}, {Student: StudentRef{ID: "a"}},
		},
	}
	perf := CoursePerformance(summary)
	assert.Equal(t, "1.50", perf.AvgEnrollmentsPerCourse.StringFixed(2))
	assert.True(t, dec("30").Equal(perf.AvgEarningPerEnrollment))
}

func TestComputeAverageRating(t *testing.T) {
	assert.Equal(t, 0.0, ComputeAverageRating(models.Course{}))

	course := models.Course{Ratings: []models.Rating{{UserID: "a", Rating: 5}, {UserID: "b", Rating: 4}}}
	assert.InDelta(t, 4.5, ComputeAverageRating(course), 1e-9)
}

func TestEnrollmentRecordsFrom(t *testing.T) {
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	purchases := []models.Purchase{
		{
			UserID:    "u1",
			Amount:    dec("12.50"),
			CreatedAt: created,
			Course:    &models.Course{Title: "Go"},
			User:      &models.User{ID: "u1", Name: "Ann", ImageURL: "https://img/ann"},
		},
		{UserID: "u2", Amount: dec("1")},
	}

	records := EnrollmentRecordsFrom(purchases)

	assert.Len(t, records, 2)
	assert.Equal(t, "Go", records[0].CourseTitle)
	assert.Equal(t, StudentRef{ID: "u1", Name: "Ann", ImageURL: "https://img/ann"}, records[0].Student)
	assert.Equal(t, created, records[0].PurchasedAt)
	assert.Equal(t, StudentRef{ID: "u2"}, records[1].Student)
}
