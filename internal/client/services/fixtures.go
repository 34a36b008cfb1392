package services

// Static portal data. Service flows are simulated; there is no backend.

type applicationFixture struct {
	Service string
	Status  string
	Office  string
}

var applications = map[string]applicationFixture{
	"APP-1001": {Service: "Income certificate", Status: "Approved", Office: "Mandal Revenue Office"},
	"APP-1002": {Service: "Ration card", Status: "Pending field verification", Office: "Civil Supplies Office"},
	"APP-1003": {Service: "Pension", Status: "Sanctioned, first payment scheduled", Office: "District Welfare Office"},
}

const defaultApplicationStatus = "Under review"

type schemeFixture struct {
	Title  string
	MinAge int
	MaxAge int
}

var schemes = map[string]schemeFixture{
	"old-age-pension": {Title: "Old age pension", MinAge: 60},
	"scholarship":     {Title: "Post-matric scholarship", MinAge: 15, MaxAge: 30},
	"housing":         {Title: "Housing for all", MinAge: 18},
}

type documentFixture struct {
	Title    string
	FileName string
}

var documents = map[string]documentFixture{
	"aadhaar":   {Title: "e-Aadhaar", FileName: "e-aadhaar.txt"},
	"income":    {Title: "Income certificate", FileName: "income-certificate.txt"},
	"residence": {Title: "Residence certificate", FileName: "residence-certificate.txt"},
	"caste":     {Title: "Caste certificate", FileName: "caste-certificate.txt"},
}
