// Package seed provides the demo data the server starts with when
// SEED_DATA is enabled: a set of Bhopal issues, upcoming community events
// and a few support tickets.
package seed

import (
	"time"

	"github.com/sakif/civic-sync/internal/model"
)

// ist is the zone the demo timestamps are written in. Values are converted
// to UTC before they reach a store.
var ist = time.FixedZone("IST", 5*60*60+30*60)

// at parses a "2006-01-02T15:04" wall time in IST. It panics on a typo so a
// bad literal fails at startup rather than silently seeding zero times.
func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04", s, ist)
	if err != nil {
		panic("seed: bad timestamp " + s)
	}
	return t.UTC()
}

func issue(id, title, description, category string, severity model.Level, status model.Status,
	lat, lng float64, area string, up, down int, reporter, reporterName, created, updated string) model.Issue {
	return model.Issue{
		ID:           id,
		Title:        title,
		Description:  description,
		Category:     category,
		Severity:     severity,
		Status:       status,
		Location:     model.Location{Lat: lat, Lng: lng, Address: area + ", Bhopal"},
		Upvotes:      up,
		Downvotes:    down,
		Comments:     []model.Comment{},
		ReportedBy:   reporter,
		ReporterName: reporterName,
		CreatedAt:    at(created),
		UpdatedAt:    at(updated),
	}
}

func resolved(i model.Issue) model.Issue {
	t := i.UpdatedAt
	i.ResolvedAt = &t
	return i
}

// Issues returns the demo issue list, newest first.
func Issues() []model.Issue {
	const (
		low    = model.LevelLow
		medium = model.LevelMedium
		high   = model.LevelHigh
	)

	first := issue("1", "Garbage not collected in Arera Colony",
		"Waste has been accumulating for 3 days near the main gate. Creating health hazards.",
		"Garbage", high, model.StatusOpen, 23.2599, 77.4126, "Arera Colony", 15, 1, "1", "Rahul Sharma",
		"2024-12-19T14:30", "2024-12-19T14:30")
	first.Comments = []model.Comment{{
		ID:         "1",
		Text:       "Same issue in our sector too!",
		Author:     "2",
		AuthorName: "Priya Singh",
		CreatedAt:  at("2024-12-20T10:30"),
	}}

	return []model.Issue{
		first,
		issue("2", "Tree fallen on road near Habibganj",
			"Large tree has fallen blocking the main road. Urgent action required.",
			"Fallen Trees", high, model.StatusInProgress, 23.2295, 77.4384, "Habibganj", 12, 0, "2", "Neha Gupta",
			"2024-12-18T09:15", "2024-12-19T11:00"),
		issue("3", "Waterlogging near New Market",
			"Heavy waterlogging after recent rains. Drainage system completely blocked.",
			"Waterlogging", medium, model.StatusOpen, 23.2584, 77.4017, "New Market", 9, 0, "3", "Amit Patel",
			"2024-12-17T16:45", "2024-12-17T16:45"),
		issue("4", "Streetlight not working in Kolar",
			"Multiple streetlights are not working creating safety issues at night.",
			"Streetlight", medium, model.StatusOpen, 23.1793, 77.4910, "Kolar", 8, 0, "4", "Sunita Sharma",
			"2024-12-16T20:00", "2024-12-16T20:00"),
		issue("5", "Pothole on Link Road",
			"Deep pothole causing vehicle damage. Multiple accidents reported.",
			"Potholes", high, model.StatusOpen, 23.2394, 77.4149, "Link Road", 18, 0, "5", "Rajesh Kumar",
			"2024-12-15T12:30", "2024-12-15T12:30"),
		issue("6", "Water supply disruption in Shahpura",
			"No water supply for the last 48 hours. Residents facing severe issues.",
			"Water Supply", high, model.StatusInProgress, 23.2156, 77.4304, "Shahpura", 14, 0, "6", "Kavita Jain",
			"2024-12-14T08:00", "2024-12-16T10:00"),
		issue("7", "Stray dogs in Berasia Road",
			"Aggressive stray dogs creating safety concerns for children and elderly.",
			"Stray Animals", medium, model.StatusOpen, 23.2885, 77.4405, "Berasia Road", 11, 2, "7", "Mohan Verma",
			"2024-12-13T17:20", "2024-12-13T17:20"),
		issue("8", "Drainage overflow in Govindpura",
			"Sewage overflow on main road. Immediate action required for health safety.",
			"Drainage", high, model.StatusOpen, 23.2467, 77.4449, "Govindpura", 16, 0, "8", "Seema Rao",
			"2024-12-12T11:45", "2024-12-12T11:45"),
		issue("9", "Illegal parking near Railway Station",
			"Vendors and vehicles blocking pedestrian walkways and emergency routes.",
			"Illegal Parking", medium, model.StatusOpen, 23.2684, 77.4081, "Railway Station", 7, 3, "9", "Vikas Tiwari",
			"2024-12-11T15:10", "2024-12-11T15:10"),
		resolved(issue("10", "Public toilet maintenance required",
			"Public toilet near Upper Lake is in poor condition and needs immediate cleaning.",
			"Public Toilets", medium, model.StatusResolved, 23.2494, 77.3910, "Upper Lake", 6, 0, "10", "Rekha Agarwal",
			"2024-12-10T09:30", "2024-12-18T14:00")),
		issue("11", "Traffic signal malfunction at MP Nagar",
			"Traffic signal not working properly causing heavy traffic congestion.",
			"Traffic Signal", high, model.StatusOpen, 23.2323, 77.4126, "MP Nagar", 13, 0, "11", "Ankit Sharma",
			"2024-12-09T07:45", "2024-12-09T07:45"),
		issue("12", "Construction debris on Hoshangabad Road",
			"Construction materials scattered on road creating traffic hazards.",
			"Construction Issues", medium, model.StatusOpen, 23.1765, 77.4434, "Hoshangabad Road", 5, 1, "12", "Deepak Gupta",
			"2024-12-08T13:20", "2024-12-08T13:20"),
		issue("13", "Graffiti on public walls in TT Nagar",
			"Inappropriate graffiti on public walls affecting city aesthetics.",
			"Graffiti", low, model.StatusOpen, 23.2334, 77.4063, "TT Nagar", 4, 0, "13", "Pooja Malhotra",
			"2024-12-07T16:00", "2024-12-07T16:00"),
		issue("14", "Broken sidewalk in Bairagarh",
			"Damaged sidewalk creating difficulty for pedestrians and wheelchair users.",
			"Broken Sidewalks", medium, model.StatusOpen, 23.2617, 77.3564, "Bairagarh", 8, 0, "14", "Suresh Joshi",
			"2024-12-06T10:15", "2024-12-06T10:15"),
		issue("15", "Noise pollution from construction",
			"Excessive noise from construction site violating permitted hours.",
			"Noise Pollution", medium, model.StatusInProgress, 23.2223, 77.4267, "Indrapuri", 9, 1, "15", "Lakshmi Iyer",
			"2024-12-05T18:30", "2024-12-07T09:00"),
		issue("16", "Park maintenance needed in Shyamla Hills",
			"Park equipment damaged and overgrown vegetation needs attention.",
			"Park Maintenance", low, model.StatusOpen, 23.2387, 77.4289, "Shyamla Hills", 6, 0, "16", "Ravi Chouhan",
			"2024-12-04T12:00", "2024-12-04T12:00"),
		issue("17", "Encroachment on footpath in Chowk Bazaar",
			"Vendors encroaching on footpath making it difficult for pedestrians.",
			"Encroachment", medium, model.StatusOpen, 23.2598, 77.4105, "Chowk Bazaar", 10, 2, "17", "Madhuri Sinha",
			"2024-12-03T14:45", "2024-12-03T14:45"),
		issue("18", "Power cut in Ayodhya Nagar",
			"Frequent power cuts affecting daily life and business operations.",
			"Powercut", high, model.StatusOpen, 23.2156, 77.4789, "Ayodhya Nagar", 12, 0, "18", "Ashok Pandey",
			"2024-12-02T19:20", "2024-12-02T19:20"),
		issue("19", "Air pollution from industrial area",
			"Heavy smoke emission from factories affecting air quality in nearby residential areas.",
			"Air Pollution", high, model.StatusOpen, 23.1875, 77.4523, "Mandideep", 17, 0, "19", "Dr. Shweta Mishra",
			"2024-12-01T08:30", "2024-12-01T08:30"),
		resolved(issue("20", "Road blockage due to fallen electric pole",
			"Electric pole fallen during storm blocking the entire road.",
			"Road Blockage", high, model.StatusResolved, 23.2045, 77.4378, "Gulmohar Colony", 11, 0, "20", "Manoj Singh",
			"2024-11-30T06:15", "2024-12-01T15:30")),
	}
}

// Events returns the demo community events. RegisteredVolunteers is left for
// the store to derive from Attendees.
func Events() []model.Event {
	event := func(id, title, description, date, timeLabel string, lat, lng float64, address, category string,
		slots int, attendees []string, organizer, created string) model.Event {
		return model.Event{
			ID:             id,
			Title:          title,
			Description:    description,
			Date:           at(date),
			Time:           timeLabel,
			Location:       model.Location{Lat: lat, Lng: lng, Address: address},
			Category:       category,
			VolunteerSlots: slots,
			Attendees:      attendees,
			Organizer:      organizer,
			CreatedAt:      at(created),
		}
	}

	return []model.Event{
		event("1", "Upper Lake Clean-Up Drive",
			"Join us for a community clean-up drive at Upper Lake. Let's make Bhopal cleaner together!",
			"2025-07-12T06:00", "6:00 AM - 9:00 AM", 23.2494, 77.3910, "Upper Lake, Bhopal", "Clean-up Drive",
			100, []string{"1", "2", "3"}, "Bhopal Municipal Corporation", "2024-12-01T10:00"),
		event("2", "Van Vihar Tree Plantation",
			"Plant trees at Van Vihar National Park to increase green cover in our city.",
			"2025-07-19T07:00", "7:00 AM - 10:00 AM", 23.2298, 77.4130, "Van Vihar National Park, Bhopal", "Tree Plantation",
			150, []string{"1", "4", "5"}, "Forest Department", "2024-12-02T10:00"),
		event("3", "Bhopal Marathon 2025",
			"Annual marathon starting from Boat Club Road. Categories: 5K, 10K, and 21K.",
			"2025-07-26T05:30", "5:30 AM - 12:00 PM", 23.2456, 77.4045, "Boat Club Road, Bhopal", "Marathon",
			200, []string{"2", "6", "7"}, "Bhopal Sports Council", "2024-12-03T10:00"),
		event("4", "Swachh Bharat Awareness Campaign",
			"Awareness campaign about cleanliness and hygiene in residential areas.",
			"2025-07-14T16:00", "4:00 PM - 7:00 PM", 23.2599, 77.4126, "Arera Colony, Bhopal", "Awareness Campaign",
			50, []string{"3", "8", "9"}, "NGO Green Bhopal", "2024-12-04T10:00"),
		event("5", "Digital Literacy Workshop",
			"Free workshop on digital skills for senior citizens and women.",
			"2025-07-21T10:00", "10:00 AM - 1:00 PM", 23.2323, 77.4126, "MP Nagar Community Center, Bhopal", "Workshop",
			30, []string{"4", "10"}, "Digital India Initiative", "2024-12-05T10:00"),
		event("6", "Monsoon Preparation Drive",
			"Community preparation for monsoon season - drain cleaning and awareness.",
			"2025-07-28T08:00", "8:00 AM - 11:00 AM", 23.2156, 77.4304, "Shahpura, Bhopal", "Clean-up Drive",
			80, []string{"5", "11"}, "Disaster Management Cell", "2024-12-06T10:00"),
	}
}

// Tickets returns the demo support tickets. They are only used when no
// ticket snapshot has been saved yet.
func Tickets() []model.Ticket {
	return []model.Ticket{
		{
			ID:           "1",
			Title:        "Unable to update profile information",
			Description:  "I am trying to update my address but the form is not saving the changes.",
			Category:     "Technical Support",
			Status:       model.StatusInProgress,
			Priority:     model.LevelMedium,
			ReportedBy:   "1",
			ReporterName: "Rahul Sharma",
			Responses: []model.TicketResponse{
				{
					ID:         "1",
					Message:    "Thank you for reporting this issue. Our technical team is looking into it.",
					Author:     "admin1",
					AuthorName: "Support Team",
					IsAdmin:    true,
					CreatedAt:  at("2024-12-18T15:45"),
				},
				{
					ID:         "2",
					Message:    "We have identified the issue and are working on a fix. Expected resolution by tomorrow.",
					Author:     "admin1",
					AuthorName: "Support Team",
					IsAdmin:    true,
					CreatedAt:  at("2024-12-19T14:20"),
				},
			},
			CreatedAt: at("2024-12-18T10:30"),
			UpdatedAt: at("2024-12-19T14:20"),
		},
		{
			ID:           "2",
			Title:        "Request for new garbage collection point",
			Description:  "Our area needs an additional garbage collection point as the current one is too far.",
			Category:     "Suggestion",
			Status:       model.StatusOpen,
			Priority:     model.LevelLow,
			ReportedBy:   "1",
			ReporterName: "Rahul Sharma",
			Responses:    []model.TicketResponse{},
			CreatedAt:    at("2024-12-17T09:15"),
			UpdatedAt:    at("2024-12-17T09:15"),
		},
		{
			ID:           "3",
			Title:        "Incorrect issue status update",
			Description:  "My reported pothole issue was marked as resolved but it is still not fixed.",
			Category:     "Complaint",
			Status:       model.StatusResolved,
			Priority:     model.LevelHigh,
			ReportedBy:   "2",
			ReporterName: "Neha Gupta",
			Responses: []model.TicketResponse{
				{
					ID:         "3",
					Message:    "We apologize for the confusion. We have re-opened the issue and dispatched a team to fix it.",
					Author:     "admin2",
					AuthorName: "City Official",
					IsAdmin:    true,
					CreatedAt:  at("2024-12-20T11:30"),
				},
			},
			CreatedAt: at("2024-12-15T16:20"),
			UpdatedAt: at("2024-12-20T11:30"),
		},
	}
}
