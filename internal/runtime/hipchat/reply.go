package hipchat

// Reply is the body a webhook response may carry; HipChat posts it back to
// the room the event came from.
type Reply struct {
	Message       string `json:"message"`
	Color         string `json:"color,omitempty"`
	Notify        bool   `json:"notify"`
	MessageFormat string `json:"message_format,omitempty"`
}

// TextReply builds a plain text reply.
func TextReply(text string) Reply {
	return Reply{Message: text, MessageFormat: "text"}
}

// Descriptor is the capabilities document served to HipChat during install.
type Descriptor struct {
	Key          string       `json:"key"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Vendor       *Vendor      `json:"vendor,omitempty"`
	Links        Links        `json:"links"`
	Capabilities Capabilities `json:"capabilities"`
}

type Vendor struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Links struct {
	Self     string `json:"self"`
	Homepage string `json:"homepage,omitempty"`
}

type Capabilities struct {
	HipChatAPIConsumer APIConsumer `json:"hipchatApiConsumer"`
	Installable        Installable `json:"installable"`
	Webhook            []Webhook   `json:"webhook,omitempty"`
}

type APIConsumer struct {
	Scopes []string `json:"scopes"`
}

type Installable struct {
	CallbackURL string `json:"callbackUrl"`
	AllowRoom   bool   `json:"allowRoom"`
	AllowGlobal bool   `json:"allowGlobal"`
}

type Webhook struct {
	Event          EventType `json:"event"`
	URL            string    `json:"url"`
	Name           string    `json:"name,omitempty"`
	Authentication string    `json:"authentication,omitempty"`
}
