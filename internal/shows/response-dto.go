package shows

import "time"

// ShowResponse is the public view of a show
type ShowResponse struct {
	ID         string    `json:"id"`
	MovieID    string    `json:"movie_id"`
	MovieTitle string    `json:"movie_title,omitempty"`
	PosterURL  string    `json:"poster_url,omitempty"`
	StartTime  time.Time `json:"start_time"`
	Price      int64     `json:"price"`
}

// DashboardResponse summarizes activity for the admin dashboard
type DashboardResponse struct {
	TotalPaidBookings int64          `json:"total_paid_bookings"`
	TotalRevenue      int64          `json:"total_revenue"`
	ActiveShows       []ShowResponse `json:"active_shows"`
	TotalUsers        int64          `json:"total_users"`
}

func toShowResponse(show *Show) ShowResponse {
	resp := ShowResponse{
		ID:        show.ID.String(),
		MovieID:   show.MovieID.String(),
		StartTime: show.StartTime,
		Price:     show.Price,
	}
	if show.Movie != nil {
		resp.MovieTitle = show.Movie.Title
		resp.PosterURL = show.Movie.PosterURL
	}
	return resp
}
