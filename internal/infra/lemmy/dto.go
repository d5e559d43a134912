package lemmy

import (
	"encoding/json"
	"strings"

	"github.com/aalvaropc/roulette/internal/domain"
)

// Wire types of the Lemmy v3 API. Only the fields roulette reads are declared.

type CommunityDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	ActorID     string `json:"actor_id"`
	NSFW        bool   `json:"nsfw"`
	InstanceID  int64  `json:"instance_id"`
}

type CommunityCountsDTO struct {
	Posts       int64 `json:"posts"`
	Subscribers int64 `json:"subscribers"`
	Comments    int64 `json:"comments"`
}

// CommunityView is shared by the API and the static catalog; catalog entries
// additionally carry the serving instance in URL.
type CommunityView struct {
	Community CommunityDTO       `json:"community"`
	Counts    CommunityCountsDTO `json:"counts"`
	URL       string             `json:"url,omitempty"`
}

func (v CommunityView) ToDomain() domain.Community {
	return domain.Community{
		ID:          v.Community.ID,
		InstanceID:  v.Community.InstanceID,
		Name:        v.Community.Name,
		Title:       v.Community.Title,
		Description: v.Community.Description,
		Icon:        v.Community.Icon,
		ActorID:     v.Community.ActorID,
		NSFW:        v.Community.NSFW,
		URL:         strings.ToLower(strings.TrimSpace(v.URL)),
		Counts: domain.Counts{
			Posts:       v.Counts.Posts,
			Subscribers: v.Counts.Subscribers,
			Comments:    v.Counts.Comments,
		},
	}
}

type postDTO struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Body             string `json:"body"`
	URL              string `json:"url"`
	ThumbnailURL     string `json:"thumbnail_url"`
	EmbedTitle       string `json:"embed_title"`
	EmbedDescription string `json:"embed_description"`
	EmbedVideoURL    string `json:"embed_video_url"`
	APID             string `json:"ap_id"`
}

type postView struct {
	Post   postDTO `json:"post"`
	Counts struct {
		Score int64 `json:"score"`
	} `json:"counts"`
}

func (v postView) toDomain() domain.Post {
	return domain.Post{
		ID:               v.Post.ID,
		Name:             v.Post.Name,
		Body:             v.Post.Body,
		URL:              v.Post.URL,
		ThumbnailURL:     v.Post.ThumbnailURL,
		EmbedTitle:       v.Post.EmbedTitle,
		EmbedDescription: v.Post.EmbedDescription,
		EmbedVideoURL:    v.Post.EmbedVideoURL,
		APID:             v.Post.APID,
		Score:            v.Counts.Score,
	}
}

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

type loginResponse struct {
	JWT *string `json:"jwt"`
}

type getPostsResponse struct {
	Posts []postView `json:"posts"`
}

type getCommunityResponse struct {
	CommunityView CommunityView `json:"community_view"`
}

type followRequest struct {
	CommunityID int64  `json:"community_id"`
	Follow      bool   `json:"follow"`
	Auth        string `json:"auth,omitempty"`
}

type listCommunitiesResponse struct {
	Communities []CommunityView `json:"communities"`
}

type federatedInstancesResponse struct {
	FederatedInstances *struct {
		Blocked []instanceRef `json:"blocked"`
	} `json:"federated_instances"`
}

// instanceRef accepts both the object form {"domain": "..."} and the plain
// string form older servers return.
type instanceRef struct {
	Domain string
}

func (r *instanceRef) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.Domain = s
		return nil
	}
	var obj struct {
		Domain string `json:"domain"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	r.Domain = obj.Domain
	return nil
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
