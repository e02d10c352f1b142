package model

import "time"

// Project is a portfolio entry shown on the public site.
type Project struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Sponsor   string    `json:"sponsor,omitempty"`
	BannerURL string    `json:"banner_url,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Services  []string  `json:"services"`
	Results   []string  `json:"results"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProjectInput は管理画面から送られるプロジェクトの作成・更新内容
type ProjectInput struct {
	Title     string   `json:"title"`
	Sponsor   string   `json:"sponsor"`
	BannerURL string   `json:"banner_url"`
	Summary   string   `json:"summary"`
	Services  []string `json:"services"`
	Results   []string `json:"results"`
}
