package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/candidate-tracker/internal/types"
)

func TestPassoutYear(t *testing.T) {
	tests := []struct {
		name  string
		texts []string
		want  string
	}{
		{"range takes later year", []string{"2015 - 2019"}, "2019"},
		{"en dash range", []string{"2016–2020"}, "2020"},
		{"month range", []string{"Aug 2015 - May 2019"}, "2019"},
		{"single year", []string{"2021"}, "2021"},
		{"postal code beside year", []string{"560034, 2021"}, "2021"},
		{"postal code only", []string{"Bengaluru 560034"}, ""},
		{"first text with a year wins", []string{"Grade: A", "2012 - 2014", "2020"}, "2014"},
		{"out of range century", []string{"1850"}, ""},
		{"no input", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PassoutYear(tt.texts...))
		})
	}
}

func TestQualificationCode(t *testing.T) {
	tests := []struct {
		degree string
		want   string
	}{
		{"Bachelor of Engineering - BE, Electrical", "BE"},
		{"Bachelor of Technology - BTech, Computer Science", "BTECH"},
		{"Master of Business Administration - MBA", "MBA"},
		{"B.E. Mechanical", "BE"},
		{"M.Tech in Data Science", "MTECH"},
		{"Bachelor of Engineering", "BE"},
		{"Bachelor's degree, Commerce", "BCOM"},
		{"Master of Science, Physics", "MSC"},
		{"Master of Business Analytics", "MBA"},
		{"Bachelor of Arts", "BA"},
		{"Diploma in Civil Engineering", "DIPLOMA"},
		{"Certificate in Cooking", ""},
		{"Bachelor's degree, Computer Science to be continued", "BSC"},
		{"Bachelor of Science, with me as lead", "BSC"},
		{"BE Mechanical", "BE"},
		{"b.e. mechanical", "BE"},
		{"MD, Internal Medicine", "MD"},
		{"Master of Arts in ma studies", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.degree, func(t *testing.T) {
			assert.Equal(t, tt.want, QualificationCode(tt.degree))
		})
	}
}

func TestLatestEducation(t *testing.T) {
	t.Run("fixture", func(t *testing.T) {
		page := loadPage(t, "https://www.linkedin.com/in/jane-doe-123/", "public_profile.html")
		assert.Equal(t, types.Education{
			School:            "Indian Institute of Technology, Bombay",
			Degree:            "Bachelor of Technology - BTech, Computer Science",
			QualificationCode: "BTECH",
			PassoutYear:       "2019",
		}, LatestEducation(page.Root))
	})

	t.Run("line fallback", func(t *testing.T) {
		root := parseHTML(t, `<section><h2>Education</h2><ul><li class="artdeco-list__item">
			<div>RV College of Engineering</div>
			<div>Bengaluru 560059</div>
			<div>Master of Science, Physics</div>
			<div>Graduated 2018</div>
		</li></ul></section>`)
		assert.Equal(t, types.Education{
			School:            "RV College of Engineering",
			Degree:            "Master of Science, Physics",
			QualificationCode: "MSC",
			PassoutYear:       "2018",
		}, LatestEducation(root))
	})

	t.Run("no section", func(t *testing.T) {
		root := parseHTML(t, `<section><h2>About</h2></section>`)
		assert.Equal(t, types.Education{}, LatestEducation(root))
	})
}
