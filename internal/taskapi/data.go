package taskapi

type overview struct {
	TotalProjects   int     `json:"totalProjects"`
	EndedProjects   int     `json:"endedProjects"`
	RunningProjects int     `json:"runningProjects"`
	PendingProjects int     `json:"pendingProjects"`
	Growth          float64 `json:"growth"`
}

type analyticsPoint struct {
	Date   string `json:"date"`
	Views  int    `json:"views"`
	Clicks int    `json:"clicks"`
}

type member struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Status   string `json:"status"`
	JoinDate string `json:"joinDate"`
}

type product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
}

type dashboardPayload struct {
	Overview  overview         `json:"overview"`
	Analytics []analyticsPoint `json:"analytics"`
	Users     []member         `json:"users"`
	Products  []product        `json:"products"`
}

func sampleDashboard() dashboardPayload {
	return dashboardPayload{
		Overview: overview{
			TotalProjects:   24,
			EndedProjects:   10,
			RunningProjects: 12,
			PendingProjects: 2,
			Growth:          41,
		},
		Analytics: []analyticsPoint{
			{Date: "2024-01-01", Views: 1200, Clicks: 340},
			{Date: "2024-01-02", Views: 1350, Clicks: 410},
			{Date: "2024-01-03", Views: 980, Clicks: 275},
			{Date: "2024-01-04", Views: 1510, Clicks: 498},
			{Date: "2024-01-05", Views: 1720, Clicks: 530},
			{Date: "2024-01-06", Views: 1100, Clicks: 312},
			{Date: "2024-01-07", Views: 1430, Clicks: 455},
		},
		Users: []member{
			{ID: 1, Name: "Alexandra Deff", Email: "alexandra@example.com", Status: "active", JoinDate: "2023-03-14"},
			{ID: 2, Name: "Edwin Adenike", Email: "edwin@example.com", Status: "active", JoinDate: "2023-06-02"},
			{ID: 3, Name: "Isaac Oluwatemilorun", Email: "isaac@example.com", Status: "inactive", JoinDate: "2023-09-21"},
			{ID: 4, Name: "David Oshodi", Email: "david@example.com", Status: "active", JoinDate: "2024-01-08"},
		},
		Products: []product{
			{ID: 1, Name: "Website Redesign", Category: "Design", Price: 1200},
			{ID: 2, Name: "Mobile App", Category: "Development", Price: 4800},
			{ID: 3, Name: "SEO Audit", Category: "Marketing", Price: 650},
			{ID: 4, Name: "Brand Kit", Category: "Design", Price: 900},
		},
	}
}
