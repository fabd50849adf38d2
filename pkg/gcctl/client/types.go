package client

// EntityRef is the {id, name} reference the platform embeds in other entities.
type EntityRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// EntityListing is the paged envelope of every list endpoint.
type EntityListing[T any] struct {
	Entities   []T `json:"entities"`
	PageSize   int `json:"pageSize,omitempty"`
	PageNumber int `json:"pageNumber,omitempty"`
	Total      int `json:"total,omitempty"`
	PageCount  int `json:"pageCount,omitempty"`
}

type Division struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	HomeDivision bool   `json:"homeDivision"`
	State        string `json:"state,omitempty"`
	Version      int    `json:"version,omitempty"`
	DateCreated  string `json:"dateCreated,omitempty"`
	DateModified string `json:"dateModified,omitempty"`
}

type Queue struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Division    *EntityRef `json:"division,omitempty"`
	DateCreated string     `json:"dateCreated,omitempty"`
}

type CreateQueueRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Division    EntityRef `json:"division"`
}

type Flow struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

type CreateFlowRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Type        string `json:"type"`
}

type ConfigurationRef struct {
	ID      string `json:"id"`
	Version string `json:"version"`
}

type Deployment struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	AllowAllDomains bool             `json:"allowAllDomains"`
	Configuration   ConfigurationRef `json:"configuration"`
	Flow            *EntityRef       `json:"flow,omitempty"`
	Status          string           `json:"status,omitempty"`
	DateCreated     string           `json:"dateCreated,omitempty"`
}

type CreateDeploymentRequest struct {
	Name            string           `json:"name"`
	Description     string           `json:"description,omitempty"`
	AllowAllDomains bool             `json:"allowAllDomains"`
	Configuration   ConfigurationRef `json:"configuration"`
	Flow            EntityRef        `json:"flow"`
}

type Message struct {
	ID          string `json:"id"`
	TextBody    string `json:"textBody,omitempty"`
	MessageType string `json:"messageType,omitempty"`
	Timestamp   string `json:"timestamp,omitempty"`
}

type SendMessageRequest struct {
	TextBody    string `json:"textBody"`
	MessageType string `json:"messageType"`
}

type User struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Email    string     `json:"email,omitempty"`
	State    string     `json:"state,omitempty"`
	Division *EntityRef `json:"division,omitempty"`
}
