package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/halftone-labs/smppclient"
	"github.com/halftone-labs/smppclient/pdu"
	"github.com/spf13/cobra"
)

var (
	srcAddr string
	dstAddr string
	message string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Bind, submit one short message, then unbind",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&srcAddr, "src", "", "source_addr for submit_sm")
	sendCmd.Flags().StringVar(&dstAddr, "dst", "", "destination_addr for submit_sm")
	sendCmd.Flags().StringVar(&message, "message", "", "short_message body")
	sendCmd.MarkFlagRequired("dst")
	sendCmd.MarkFlagRequired("message")
}

func bindTypeFromFlag(s string) (smpp.BindType, error) {
	switch strings.ToLower(s) {
	case "transmitter", "tx":
		return smpp.BindTransmitter, nil
	case "receiver", "rx":
		return smpp.BindReceiver, nil
	case "transceiver", "trx":
		return smpp.BindTransceiver, nil
	default:
		return 0, fmt.Errorf("unknown bind type %q", s)
	}
}

func runSend(cmd *cobra.Command, args []string) error {
	bt, err := bindTypeFromFlag(flags.bindType)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), flags.transactionTimer*2)
	defer cancel()

	sess, err := smpp.Dial(ctx, "tcp", flags.addr, bt, smpp.BindParameter{
		SystemID:   flags.systemID,
		Password:   flags.password,
		SystemType: flags.systemType,
	}, smpp.Config{
		EnquireLinkTimer: flags.enquireLinkTimer,
		TransactionTimer: flags.transactionTimer,
		Logger:           newLogger(),
	})
	if err != nil {
		return fmt.Errorf("bind: %w", err)
	}
	defer sess.Close()

	fmt.Printf("bound to %s as %s, peer system_id=%s\n", flags.addr, flags.systemID, sess.PeerSystemID())

	msgID, err := sess.SubmitSm(cmd.Context(), &pdu.SubmitSm{
		SourceAddr:      srcAddr,
		DestinationAddr: dstAddr,
		ShortMessage:    message,
	})
	if err != nil {
		return fmt.Errorf("submit_sm: %w", err)
	}
	fmt.Printf("submitted, message_id=%s\n", msgID)

	if err := sess.UnbindAndClose(context.Background()); err != nil {
		return fmt.Errorf("unbind: %w", err)
	}
	fmt.Println("unbound")
	return nil
}
