package email

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"resume-ranker/internal/models"
)

// GmailSource implements Source over the Gmail API with read-only scope.
type GmailSource struct {
	service *gmail.Service
	limiter *rate.Limiter
}

// NewGmailSource builds a Gmail-backed source from an OAuth credentials file
// and a cached token file. When no valid token exists the user is walked
// through the web consent flow and the token is cached for next time.
func NewGmailSource(ctx context.Context, credentialsPath, tokenPath string) (*GmailSource, error) {
	b, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read credentials file: %w", err)
	}

	config, err := google.ConfigFromJSON(b, gmail.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	client, err := getClient(ctx, config, tokenPath)
	if err != nil {
		return nil, err
	}

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create Gmail client: %w", err)
	}

	return &GmailSource{
		service: srv,
		limiter: rate.NewLimiter(rate.Every(PageDelay), 1),
	}, nil
}

func getClient(ctx context.Context, config *oauth2.Config, tokenPath string) (*http.Client, error) {
	tok, err := tokenFromFile(tokenPath)
	if err != nil {
		tok, err = getTokenFromWeb(ctx, config)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenPath, tok); err != nil {
			log.Printf("unable to cache oauth token: %v", err)
		}
	}
	return config.Client(ctx, tok), nil
}

func getTokenFromWeb(ctx context.Context, config *oauth2.Config) (*oauth2.Token, error) {
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var authCode string
	if _, err := fmt.Scan(&authCode); err != nil {
		return nil, fmt.Errorf("unable to read authorization code: %w", err)
	}

	tok, err := config.Exchange(ctx, authCode)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve token from web: %w", err)
	}
	return tok, nil
}

func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(tok)
	return tok, err
}

func saveToken(path string, token *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(token)
}

// ListMessageIDs pages through the listing until the provider stops returning
// a next-page token, pausing between pages.
func (s *GmailSource) ListMessageIDs(ctx context.Context, query string) ([]string, error) {
	var ids []string
	pageToken := ""
	for {
		call := s.service.Users.Messages.List("me").Q(query).MaxResults(500).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve messages: %w", err)
		}
		for _, m := range r.Messages {
			ids = append(ids, m.Id)
		}
		if r.NextPageToken == "" {
			return ids, nil
		}
		pageToken = r.NextPageToken
		if err := s.limiter.Wait(ctx); err != nil {
			return ids, err
		}
	}
}

// GetMessage fetches one message in full form and decodes its subject, body,
// and attachment references.
func (s *GmailSource) GetMessage(ctx context.Context, id string) (*models.EmailMessage, error) {
	msg, err := s.service.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve message %s: %w", id, err)
	}

	out := &models.EmailMessage{ID: id}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			if h.Name == "Subject" {
				out.Subject = h.Value
				break
			}
		}
		out.Body = extractBody(msg.Payload)
		out.Attachments = collectAttachments(msg.Payload)
	}
	return out, nil
}

// GetAttachment fetches and decodes one attachment's bytes.
func (s *GmailSource) GetAttachment(ctx context.Context, messageID, attachmentID string) ([]byte, error) {
	att, err := s.service.Users.Messages.Attachments.Get("me", messageID, attachmentID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve attachment: %w", err)
	}
	data, err := decodeBase64URL(att.Data)
	if err != nil {
		return nil, fmt.Errorf("unable to decode attachment: %w", err)
	}
	return data, nil
}

// extractBody walks the MIME tree for the first text/plain or text/html part
// with data, matching how messages nest multipart alternatives.
func extractBody(payload *gmail.MessagePart) string {
	if payload == nil {
		return ""
	}
	if payload.Body != nil && payload.Body.Data != "" {
		if data, err := decodeBase64URL(payload.Body.Data); err == nil {
			return string(data)
		}
	}
	for _, part := range payload.Parts {
		if (part.MimeType == "text/plain" || part.MimeType == "text/html") &&
			part.Body != nil && part.Body.Data != "" {
			if data, err := decodeBase64URL(part.Body.Data); err == nil {
				return string(data)
			}
		}
		if len(part.Parts) > 0 {
			if nested := extractBody(part); nested != "" {
				return nested
			}
		}
	}
	return ""
}

func collectAttachments(payload *gmail.MessagePart) []models.Attachment {
	var atts []models.Attachment
	for _, part := range payload.Parts {
		if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
			atts = append(atts, models.Attachment{
				Filename: part.Filename,
				ID:       part.Body.AttachmentId,
			})
		}
	}
	return atts
}

// decodeBase64URL tolerates missing padding in the provider's base64url data.
func decodeBase64URL(data string) ([]byte, error) {
	if m := len(data) % 4; m != 0 {
		data += strings.Repeat("=", 4-m)
	}
	return base64.URLEncoding.DecodeString(data)
}
