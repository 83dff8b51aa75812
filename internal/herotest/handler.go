package herotest

import (
	"fmt"
	"time"

	"heroprobe/heroproto"
	"heroprobe/internal/clientmanager"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *Server) handleMessage(client clientmanager.Client, data []byte) error {
	msgType, err := heroproto.ParseMessageType(data)
	if err != nil {
		return err
	}

	switch msgType {
	case heroproto.MSG_CHAT:
		return s.chatMessage(client, data)
	case heroproto.MSG_REPORT_OBSTACLE:
		return s.reportObstacle(client, data)
	case heroproto.MSG_RIDE_REQUEST:
		return s.rideRequest(client, data)
	case heroproto.MSG_FIRST_AID_REQUEST:
		return s.firstAidRequest(client, data)
	case heroproto.MSG_REMOVE_OBSTACLE:
		return s.removeObstacle(data)
	case heroproto.MSG_REMOVE_MESSAGE:
		return s.removeMessage(data)
	case heroproto.MSG_REMOVE_RIDE_REQUEST:
		return s.removeRideRequest(data)
	}
	s.logger.Debug("ignoring message", zap.String("type", msgType))
	return nil
}

func (s *Server) chatMessage(client clientmanager.Client, data []byte) error {
	req, err := heroproto.ParseMessage[heroproto.ChatMessageRequest](data)
	if err != nil {
		return err
	}
	if limited, err := s.limited(client, kindChat, "sending another message"); limited {
		return err
	}

	username := req.Username
	if username == "" {
		username = heroproto.AnonymousUsername
	}
	msg := heroproto.ChatMessage{
		ID:        uuid.NewString(),
		Username:  username,
		Message:   req.Message,
		Timestamp: time.Now().UnixMilli(),
	}

	s.mu.Lock()
	s.chatMessages = append(s.chatMessages, msg)
	if len(s.chatMessages) > chatHistoryLimit {
		s.chatMessages = append([]heroproto.ChatMessage(nil), s.chatMessages[len(s.chatMessages)-chatHistoryLimit:]...)
	}
	s.mu.Unlock()

	return s.broadcast(&heroproto.ChatMessageBroadcast{
		Type:    heroproto.MSG_NEW_CHAT,
		Message: msg,
	})
}

func (s *Server) reportObstacle(client clientmanager.Client, data []byte) error {
	req, err := heroproto.ParseMessage[heroproto.ReportObstacleRequest](data)
	if err != nil {
		return err
	}
	if limited, err := s.limited(client, kindObstacle, "reporting another obstacle"); limited {
		return err
	}
	obstacle := heroproto.Obstacle{
		ID:          uuid.NewString(),
		Type:        req.ObstacleType,
		Coordinate:  req.Coordinate,
		Label:       req.ObstacleType,
		Description: req.Description,
		MarkerColor: req.MarkerColor,
	}

	s.mu.Lock()
	s.obstacles = append(s.obstacles, obstacle)
	s.mu.Unlock()

	return s.broadcast(&heroproto.NewObstacleMessage{
		Type:     heroproto.MSG_NEW_OBSTACLE,
		Obstacle: obstacle,
	})
}

func (s *Server) rideRequest(client clientmanager.Client, data []byte) error {
	req, err := heroproto.ParseMessage[heroproto.RideRequestRequest](data)
	if err != nil {
		return err
	}
	if limited, err := s.limited(client, kindRide, "submitting another ride request"); limited {
		return err
	}
	ride := heroproto.RideRequest{
		ID:          uuid.NewString(),
		Type:        heroproto.MSG_RIDE_REQUEST,
		Coordinate:  req.Coordinate,
		Label:       "Ride Request",
		Description: req.Description,
		Passengers:  req.Passengers,
	}

	s.mu.Lock()
	s.rideRequests = append(s.rideRequests, ride)
	s.mu.Unlock()

	return s.broadcast(&heroproto.NewRideRequestMessage{
		Type:    heroproto.MSG_NEW_RIDE_REQUEST,
		Request: ride,
	})
}

func (s *Server) firstAidRequest(client clientmanager.Client, data []byte) error {
	req, err := heroproto.ParseMessage[heroproto.FirstAidRequestRequest](data)
	if err != nil {
		return err
	}
	if limited, err := s.limited(client, kindFirstAid, "submitting another first aid request"); limited {
		return err
	}
	aid := heroproto.FirstAidRequest{
		ID:          uuid.NewString(),
		Type:        heroproto.MSG_FIRST_AID_REQUEST,
		Coordinate:  req.Request.Coordinate,
		Label:       "First Aid Request",
		Description: req.Request.Description,
		InjuryType:  req.Request.InjuryType,
	}

	s.mu.Lock()
	s.firstAidRequests = append(s.firstAidRequests, aid)
	s.mu.Unlock()

	return s.broadcast(&heroproto.NewFirstAidRequestMessage{
		Type:    heroproto.MSG_NEW_FIRST_AID_REQUEST,
		Request: aid,
	})
}

func (s *Server) removeObstacle(data []byte) error {
	req, err := heroproto.ParseMessage[heroproto.RemoveObstacleRequest](data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	found := false
	for i, o := range s.obstacles {
		if o.ID == req.ObstacleID {
			s.obstacles = append(s.obstacles[:i], s.obstacles[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return nil
	}
	return s.broadcast(&heroproto.ObstacleRemovedMessage{
		Type:       heroproto.MSG_OBSTACLE_REMOVED,
		ObstacleID: req.ObstacleID,
	})
}

func (s *Server) removeMessage(data []byte) error {
	req, err := heroproto.ParseMessage[heroproto.RemoveMessageRequest](data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	found := false
	for i, m := range s.chatMessages {
		if m.ID == req.MessageID {
			s.chatMessages = append(s.chatMessages[:i], s.chatMessages[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return nil
	}
	return s.broadcast(&heroproto.MessageRemovedMessage{
		Type:      heroproto.MSG_MESSAGE_REMOVED,
		MessageID: req.MessageID,
	})
}

func (s *Server) removeRideRequest(data []byte) error {
	req, err := heroproto.ParseMessage[heroproto.RemoveRideRequestRequest](data)
	if err != nil {
		return err
	}
	s.mu.Lock()
	found := false
	for i, r := range s.rideRequests {
		if r.ID == req.RequestID {
			s.rideRequests = append(s.rideRequests[:i], s.rideRequests[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return nil
	}
	if err := s.broadcast(&heroproto.RideRequestRemovedMessage{
		Type:      heroproto.MSG_RIDE_REQUEST_REMOVED,
		RequestID: req.RequestID,
	}); err != nil {
		return fmt.Errorf("failed to announce removal: %w", err)
	}
	return nil
}
