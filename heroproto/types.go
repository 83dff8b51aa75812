package heroproto

const (
	// Client->Server
	MSG_CHAT                = "chat_message"
	MSG_REPORT_OBSTACLE     = "report_obstacle"
	MSG_REMOVE_OBSTACLE     = "remove_obstacle"
	MSG_REMOVE_MESSAGE      = "remove_message"
	MSG_RIDE_REQUEST        = "ride_request"
	MSG_REMOVE_RIDE_REQUEST = "remove_ride_request"
	MSG_FIRST_AID_REQUEST   = "first_aid_request"

	// Server->Client
	MSG_INIT                  = "init"
	MSG_ERROR                 = "error"
	MSG_NEW_CHAT              = "new_chat_message"
	MSG_NEW_OBSTACLE          = "new_obstacle"
	MSG_OBSTACLE_REMOVED      = "obstacle_removed"
	MSG_MESSAGE_REMOVED       = "message_removed"
	MSG_NEW_RIDE_REQUEST      = "new_ride_request"
	MSG_RIDE_REQUEST_REMOVED  = "ride_request_removed"
	MSG_NEW_FIRST_AID_REQUEST = "new_first_aid_request"
)

// AnonymousUsername is assigned by the server to chat messages without a username.
const AnonymousUsername = "Anonymous"

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Client to server

type ChatMessageRequest struct {
	Type     string `json:"type"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message"`
}

type ReportObstacleRequest struct {
	Type         string     `json:"type"`
	ObstacleType string     `json:"obstacleType"`
	Coordinate   Coordinate `json:"coordinate"`
	Description  string     `json:"description"`
	MarkerColor  string     `json:"markerColor,omitempty"`
}

type RideRequestRequest struct {
	Type        string     `json:"type"`
	Coordinate  Coordinate `json:"coordinate"`
	Description string     `json:"description"`
	Passengers  int        `json:"passengers"`
	Label       string     `json:"label,omitempty"`
}

type FirstAidDetails struct {
	Coordinate  Coordinate `json:"coordinate"`
	Description string     `json:"description"`
	InjuryType  string     `json:"injuryType"`
}

type FirstAidRequestRequest struct {
	Type    string          `json:"type"`
	Request FirstAidDetails `json:"request"`
}

type RemoveObstacleRequest struct {
	Type       string `json:"type"`
	ObstacleID string `json:"obstacleId"`
}

type RemoveMessageRequest struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
}

type RemoveRideRequestRequest struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
}

// Server to client

type ChatMessage struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

type Obstacle struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Coordinate  Coordinate `json:"coordinate"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	MarkerColor string     `json:"markerColor,omitempty"`
}

type RideRequest struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Coordinate  Coordinate `json:"coordinate"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Passengers  int        `json:"passengers"`
}

type FirstAidRequest struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Coordinate  Coordinate `json:"coordinate"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	InjuryType  string     `json:"injuryType"`
}

type InitData struct {
	Obstacles        []Obstacle        `json:"obstacles"`
	RideRequests     []RideRequest     `json:"rideRequests"`
	FirstAidRequests []FirstAidRequest `json:"firstAidRequests"`
	ChatMessages     []ChatMessage     `json:"chatMessages"`
}

type InitMessage struct {
	Type string   `json:"type"`
	Data InitData `json:"data"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type ChatMessageBroadcast struct {
	Type    string      `json:"type"`
	Message ChatMessage `json:"message"`
}

type NewObstacleMessage struct {
	Type     string   `json:"type"`
	Obstacle Obstacle `json:"obstacle"`
}

type NewRideRequestMessage struct {
	Type    string      `json:"type"`
	Request RideRequest `json:"request"`
}

type NewFirstAidRequestMessage struct {
	Type    string          `json:"type"`
	Request FirstAidRequest `json:"request"`
}

type ObstacleRemovedMessage struct {
	Type       string `json:"type"`
	ObstacleID string `json:"obstacleId"`
}

type MessageRemovedMessage struct {
	Type      string `json:"type"`
	MessageID string `json:"messageId"`
}

type RideRequestRemovedMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"requestId"`
}
