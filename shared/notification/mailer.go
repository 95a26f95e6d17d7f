// Package notification dispatches transactional email through a background
// worker. Sends are fire-and-forget: a full queue or a failing transport is
// logged and never surfaces to the request that triggered the mail.
package notification

import (
	"fmt"
	"log"
	"sync"
)

const defaultQueueSize = 256

// Mailer queues messages for asynchronous delivery.
type Mailer struct {
	sender Sender
	queue  chan Message

	closeOnce sync.Once
	done      chan struct{}
}

// NewMailer starts the delivery worker. Callers own the mailer lifetime and
// should Close it on shutdown.
func NewMailer(sender Sender) *Mailer {
	m := &Mailer{
		sender: sender,
		queue:  make(chan Message, defaultQueueSize),
		done:   make(chan struct{}),
	}
	go m.run()
	return m
}

func (m *Mailer) run() {
	defer close(m.done)
	for msg := range m.queue {
		if err := m.sender.Send(msg); err != nil {
			log.Printf("⚠️ Failed to send email to %s: %v", msg.To, err)
		}
	}
}

// Enqueue hands a message to the worker without blocking. Messages are
// dropped when the queue is full.
func (m *Mailer) Enqueue(msg Message) {
	select {
	case m.queue <- msg:
	default:
		log.Printf("⚠️ Mail queue full, dropping email to %s", msg.To)
	}
}

// Close stops accepting messages and waits for the worker to drain the queue.
func (m *Mailer) Close() {
	m.closeOnce.Do(func() {
		close(m.queue)
		<-m.done
	})
}

// --- Message builders for every notification this system sends ---

// SendOrgRegistrationReceived notifies a super admin that a new organization
// registration awaits approval.
func (m *Mailer) SendOrgRegistrationReceived(adminEmail, adminName, applicantName, applicantEmail, requestedOrgName string) {
	m.Enqueue(Message{
		To:      adminEmail,
		Subject: "New organization registration pending approval",
		Body: fmt.Sprintf("Hi %s,\n\n%s (%s) has registered as an organization administrator and requested the organization %q.\n\nPlease review the request in the admin dashboard.\n",
			adminName, applicantName, applicantEmail, requestedOrgName),
	})
}

func (m *Mailer) SendOrgAdminApproval(email, firstName, organizationName string) {
	m.Enqueue(Message{
		To:      email,
		Subject: fmt.Sprintf("Your organization %s has been approved", organizationName),
		Body: fmt.Sprintf("Hi %s,\n\nYour organization %q has been approved. You can now log in and start inviting your team.\n",
			firstName, organizationName),
	})
}

func (m *Mailer) SendOrgAdminRejection(email, firstName, reason string) {
	m.Enqueue(Message{
		To:      email,
		Subject: "Your organization registration was not approved",
		Body: fmt.Sprintf("Hi %s,\n\nYour organization registration was not approved.\n\nReason: %s\n",
			firstName, reason),
	})
}

// SendInvitation mails login credentials to a newly invited member.
func (m *Mailer) SendInvitation(email, firstName, organizationName, tempPassword string) {
	m.Enqueue(Message{
		To:      email,
		Subject: fmt.Sprintf("You've been invited to join %s", organizationName),
		Body: fmt.Sprintf("Hi %s,\n\nYou've been invited to join %s.\n\nEmail: %s\nTemporary password: %s\n\nThis is a temporary password. You will be required to change it on first login.\n",
			firstName, organizationName, email, tempPassword),
	})
}

func (m *Mailer) SendAccountDeactivated(email, firstName, reason string) {
	m.Enqueue(Message{
		To:      email,
		Subject: "Your account has been deactivated",
		Body: fmt.Sprintf("Hi %s,\n\nYour account has been deactivated.\n\nReason: %s\n\nPlease contact support if you believe this is a mistake.\n",
			firstName, reason),
	})
}

func (m *Mailer) SendAccountReactivated(email, firstName string) {
	m.Enqueue(Message{
		To:      email,
		Subject: "Your account has been reactivated",
		Body:    fmt.Sprintf("Hi %s,\n\nYour account has been reactivated. You can log in again.\n", firstName),
	})
}

func (m *Mailer) SendOrganizationDeactivated(email, firstName, organizationName, reason string) {
	m.Enqueue(Message{
		To:      email,
		Subject: fmt.Sprintf("Organization %s has been deactivated", organizationName),
		Body: fmt.Sprintf("Hi %s,\n\nYour organization %q has been deactivated.\n\nReason: %s\n\nMembers will not be able to log in until it is reactivated.\n",
			firstName, organizationName, reason),
	})
}

func (m *Mailer) SendOrganizationReactivated(email, firstName, organizationName string) {
	m.Enqueue(Message{
		To:      email,
		Subject: fmt.Sprintf("Organization %s has been reactivated", organizationName),
		Body: fmt.Sprintf("Hi %s,\n\nYour organization %q has been reactivated. Members can log in again.\n",
			firstName, organizationName),
	})
}

func (m *Mailer) SendUpgradeRequestSubmitted(email, firstName, organizationName, currentPlan, requestedPlan string) {
	m.Enqueue(Message{
		To:      email,
		Subject: "Your plan upgrade request has been submitted",
		Body: fmt.Sprintf("Hi %s,\n\nYour request to move %s from %s to %s has been submitted and is awaiting review.\n",
			firstName, organizationName, currentPlan, requestedPlan),
	})
}

func (m *Mailer) SendUpgradeRequestToAdmin(adminEmail, adminName, organizationName, orgAdminName, currentPlan, requestedPlan, reason string) {
	m.Enqueue(Message{
		To:      adminEmail,
		Subject: fmt.Sprintf("Upgrade request from %s", organizationName),
		Body: fmt.Sprintf("Hi %s,\n\n%s of %s requested a plan change from %s to %s.\n\nReason: %s\n",
			adminName, orgAdminName, organizationName, currentPlan, requestedPlan, reason),
	})
}

func (m *Mailer) SendUpgradeRequestApproved(email, firstName, organizationName, oldPlan, newPlan string) {
	m.Enqueue(Message{
		To:      email,
		Subject: "Your plan upgrade request has been approved",
		Body: fmt.Sprintf("Hi %s,\n\n%s has been moved from %s to %s.\n",
			firstName, organizationName, oldPlan, newPlan),
	})
}

func (m *Mailer) SendUpgradeRequestRejected(email, firstName, organizationName, requestedPlan, rejectionReason string) {
	m.Enqueue(Message{
		To:      email,
		Subject: "Your plan upgrade request was not approved",
		Body: fmt.Sprintf("Hi %s,\n\nThe request to move %s to %s was not approved.\n\nReason: %s\n",
			firstName, organizationName, requestedPlan, rejectionReason),
	})
}

func (m *Mailer) SendPlanChangedByAdmin(email, firstName, organizationName, oldPlan, newPlan, adminReason string) {
	body := fmt.Sprintf("Hi %s,\n\nAn administrator has changed the plan of %s from %s to %s.\n",
		firstName, organizationName, oldPlan, newPlan)
	if adminReason != "" {
		body += fmt.Sprintf("\nReason: %s\n", adminReason)
	}
	m.Enqueue(Message{
		To:      email,
		Subject: fmt.Sprintf("Subscription plan updated for %s", organizationName),
		Body:    body,
	})
}
